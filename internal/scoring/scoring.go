// Package scoring — расчёт и классификация рейтингов рисков.
package scoring

import "math"

// Rating возвращает рейтинг риска: вероятность × влияние,
// округлённое до двух знаков. Диапазоны аргументов [1..5]
// проверяет вызывающая сторона, здесь значения не обрезаются.
func Rating(probability, impact int) float64 {
	return math.Round(float64(probability*impact)*100) / 100
}

// Classify переводит рейтинг (домен [1..25]) в уровень риска.
// Применяется к остаточному рейтингу.
func Classify(rating float64) string {
	switch {
	case rating >= 20:
		return "critical"
	case rating >= 15:
		return "high"
	case rating >= 10:
		return "medium"
	default:
		return "low"
	}
}

// DescribeEffectiveness — текстовая расшифровка эффективности контроля.
// Точное совпадение, без интерполяции.
func DescribeEffectiveness(effectiveness float64) string {
	switch effectiveness {
	case 0.0:
		return "Not Effective"
	case 0.5:
		return "Partially Effective"
	case 1.0:
		return "Fully Effective"
	default:
		return "Unknown"
	}
}

// DescribeBand — словесная оценка одиночного значения вероятности
// или влияния. Пороговая схема иная, чем у Classify, и к
// произведению вероятности на влияние не применяется.
func DescribeBand(value float64) string {
	switch {
	case value < 1.5:
		return "Very Low"
	case value < 3.5:
		return "Low"
	case value < 6.5:
		return "Moderate"
	case value < 8.5:
		return "High"
	default:
		return "Very High"
	}
}

// ScaleLabel — подпись деления шкалы вероятности/влияния 1..5.
func ScaleLabel(value int) string {
	switch value {
	case 1:
		return "Very Low"
	case 2:
		return "Low"
	case 3:
		return "Moderate"
	case 4:
		return "High"
	case 5:
		return "Very High"
	default:
		return "Unknown"
	}
}
