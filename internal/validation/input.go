package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/audit-backend/internal/models"
)

// Константы валидации
const (
	MinTitleLength    = 3
	MaxTitleLength    = 200
	MinContentLength  = 10
	MaxContentLength  = 50000
	MinCommentLength  = 10
	MaxCommentLength  = 20000
	MaxRevisionLength = 50000
	MaxURLLength      = 500
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if err := ValidateNonEmpty("имя пользователя", username); err != nil {
		return err
	}
	return ValidateLength("имя пользователя", strings.TrimSpace(username), MinUsernameLength, MaxUsernameLength)
}

// ValidateTitle проверяет заголовок заявки.
func ValidateTitle(title string) error {
	if err := ValidateNonEmpty("заголовок", title); err != nil {
		return err
	}
	return ValidateLength("заголовок", title, MinTitleLength, MaxTitleLength)
}

// ValidateContent проверяет содержимое заявки.
func ValidateContent(content string) error {
	if err := ValidateNonEmpty("содержимое", content); err != nil {
		return err
	}
	return ValidateLength("содержимое", content, MinContentLength, MaxContentLength)
}

// ValidateCategory проверяет, что категория из закрытого набора.
func ValidateCategory(category string) error {
	if !models.IsValidCategory(category) {
		return fmt.Errorf("неизвестная категория %q", category)
	}
	return nil
}

// ValidateBudget проверяет, что бюджет из допустимого набора сумм.
func ValidateBudget(budget int64) error {
	if !models.IsAllowedBudget(budget) {
		return fmt.Errorf("бюджет %d не входит в допустимый набор сумм", budget)
	}
	return nil
}

// ValidateVerdict проверяет вердикт аудита.
func ValidateVerdict(verdict string) error {
	if !models.IsValidVerdict(verdict) {
		return fmt.Errorf("неизвестный вердикт %q", verdict)
	}
	return nil
}

// ValidateComment проверяет обязательный комментарий результата аудита.
func ValidateComment(comment string) error {
	if err := ValidateNonEmpty("комментарий", comment); err != nil {
		return err
	}
	return ValidateLength("комментарий", comment, MinCommentLength, MaxCommentLength)
}

// ValidateAIChatURL проверяет необязательную ссылку на диалог с AI.
func ValidateAIChatURL(raw string) error {
	if raw == "" {
		return nil
	}
	if err := ValidateLength("ссылка на диалог", raw, 0, MaxURLLength); err != nil {
		return err
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("ссылка на диалог должна быть валидным http(s) URL")
	}
	return nil
}

// Допустимые значения анкет по категориям.
var (
	itCodePhases     = set("learning", "mvp", "production_small", "production_large")
	itCodePriorities = set("fix", "security", "performance", "maintainability")
	itCodeTechLevels = set("non_engineer", "beginner", "professional")
	trRelationships  = set("new", "existing_good", "existing_trouble", "internal", "public")
	trPurposes       = set("request", "apology", "rejection", "notification", "proposal")
	trConcerns       = set("condescending", "jargon", "grammar", "other")
	acMediums        = set("undergraduate", "peer_reviewed", "web_article", "business_doc")
	acFocuses        = set("existence_check", "content_match", "logic", "recency")
	acPolicies       = set("point_out_only", "suggest_alternatives")
)

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func inSet(fieldName, value string, allowed map[string]bool) error {
	if !allowed[value] {
		return fmt.Errorf("недопустимое значение %q поля %s", value, fieldName)
	}
	return nil
}

// ValidateCategoryOptions проверяет, что вариант анкеты соответствует
// категории заявки и все значения из допустимых наборов. Дальше ядро
// содержимое анкеты не интерпретирует, хранит и возвращает как есть.
func ValidateCategoryOptions(category string, opts models.CategoryOptions) error {
	switch category {
	case models.CategoryITCode:
		v := opts.ITCode
		if v == nil {
			return fmt.Errorf("анкета не соответствует категории it_code")
		}
		if err := inSet("phase", v.Phase, itCodePhases); err != nil {
			return err
		}
		if err := inSet("priority", v.Priority, itCodePriorities); err != nil {
			return err
		}
		return inSet("tech_level", v.TechLevel, itCodeTechLevels)

	case models.CategoryTranslation:
		v := opts.Translation
		if v == nil {
			return fmt.Errorf("анкета не соответствует категории translation")
		}
		if err := inSet("relationship", v.Relationship, trRelationships); err != nil {
			return err
		}
		if err := inSet("purpose", v.Purpose, trPurposes); err != nil {
			return err
		}
		for _, c := range v.Concerns {
			if err := inSet("concerns", c, trConcerns); err != nil {
				return err
			}
		}
		return nil

	case models.CategoryAcademic:
		v := opts.Academic
		if v == nil {
			return fmt.Errorf("анкета не соответствует категории academic")
		}
		if err := inSet("medium", v.Medium, acMediums); err != nil {
			return err
		}
		if err := inSet("focus", v.Focus, acFocuses); err != nil {
			return err
		}
		return inSet("policy", v.Policy, acPolicies)
	}

	return fmt.Errorf("неизвестная категория %q", category)
}
