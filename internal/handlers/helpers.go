package handlers

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"prudence/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// currentUser достаёт пользователя, которого положил middleware.InjectUser.
func currentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get("CurrentUser")
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

// parseID разбирает числовой id из пути.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// bindingErrors разворачивает ошибку биндинга в ответ
// с пофилдовыми сообщениями, чтобы клиент мог исправить запрос.
func bindingErrors(err error) gin.H {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return gin.H{"error": "invalid request body"}
	}

	fields := gin.H{}
	for _, fe := range verrs {
		fields[snakeCase(fe.Field())] = validationMessage(fe)
	}
	return gin.H{"error": "validation failed", "fields": fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "invalid value"
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			// границу ставим только после строчной, чтобы RiskID -> risk_id
			if i > 0 && !unicode.IsUpper(rune(s[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
