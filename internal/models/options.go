package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ITCodeOptions — анкета категории it_code.
type ITCodeOptions struct {
	Phase     string `json:"phase"`      // learning | mvp | production_small | production_large
	Priority  string `json:"priority"`   // fix | security | performance | maintainability
	TechLevel string `json:"tech_level"` // non_engineer | beginner | professional
}

// TranslationOptions — анкета категории translation.
type TranslationOptions struct {
	Relationship string   `json:"relationship"` // new | existing_good | existing_trouble | internal | public
	Purpose      string   `json:"purpose"`      // request | apology | rejection | notification | proposal
	Concerns     []string `json:"concerns"`     // подмножество: condescending, jargon, grammar, other
}

// AcademicOptions — анкета категории academic.
type AcademicOptions struct {
	Medium string `json:"medium"` // undergraduate | peer_reviewed | web_article | business_doc
	Focus  string `json:"focus"`  // existence_check | content_match | logic | recency
	Policy string `json:"policy"` // point_out_only | suggest_alternatives
}

// CategoryOptions — вариантная запись анкеты, определяемая категорией заявки.
// Ровно одно из полей заполнено; ядро хранит и возвращает содержимое как есть,
// проверяя только соответствие варианта объявленной категории.
type CategoryOptions struct {
	Category    string              `json:"-"`
	ITCode      *ITCodeOptions      `json:"-"`
	Translation *TranslationOptions `json:"-"`
	Academic    *AcademicOptions    `json:"-"`

	// raw хранит отложенный JSON между UnmarshalJSON/Scan и Resolve,
	// когда категория ещё не известна.
	raw []byte
}

// NewCategoryOptions разбирает сырой JSON анкеты под объявленную категорию.
func NewCategoryOptions(category string, raw json.RawMessage) (CategoryOptions, error) {
	opts := CategoryOptions{Category: category}
	if len(raw) == 0 {
		return opts, fmt.Errorf("category options: анкета обязательна")
	}

	dec := func(v interface{}) error {
		return json.Unmarshal(raw, v)
	}

	switch category {
	case CategoryITCode:
		var v ITCodeOptions
		if err := dec(&v); err != nil {
			return opts, fmt.Errorf("category options: некорректная анкета it_code: %w", err)
		}
		opts.ITCode = &v
	case CategoryTranslation:
		var v TranslationOptions
		if err := dec(&v); err != nil {
			return opts, fmt.Errorf("category options: некорректная анкета translation: %w", err)
		}
		opts.Translation = &v
	case CategoryAcademic:
		var v AcademicOptions
		if err := dec(&v); err != nil {
			return opts, fmt.Errorf("category options: некорректная анкета academic: %w", err)
		}
		opts.Academic = &v
	default:
		return opts, fmt.Errorf("category options: неизвестная категория %q", category)
	}

	return opts, nil
}

// payload возвращает активный вариант.
func (o CategoryOptions) payload() interface{} {
	switch {
	case o.ITCode != nil:
		return o.ITCode
	case o.Translation != nil:
		return o.Translation
	case o.Academic != nil:
		return o.Academic
	}
	return nil
}

// MarshalJSON сериализует активный вариант без обёртки,
// сохраняя исходную форму анкеты.
func (o CategoryOptions) MarshalJSON() ([]byte, error) {
	p := o.payload()
	if p == nil {
		return []byte("null"), nil
	}
	return json.Marshal(p)
}

// UnmarshalJSON сохраняет сырой JSON; вариант выбирается позже по категории
// через Resolve, когда категория известна из соседнего поля записи.
func (o *CategoryOptions) UnmarshalJSON(data []byte) error {
	o.raw = append(o.raw[:0], data...)
	return nil
}

// Resolve привязывает отложенный JSON к варианту по категории.
// Нужен после чтения из базы или из тела запроса.
func (o *CategoryOptions) Resolve(category string) error {
	if o.payload() != nil {
		o.Category = category
		return nil
	}
	parsed, err := NewCategoryOptions(category, json.RawMessage(o.raw))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Value реализует driver.Valuer для колонки jsonb.
func (o CategoryOptions) Value() (driver.Value, error) {
	b, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan реализует sql.Scanner для колонки jsonb.
func (o *CategoryOptions) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		o.raw = append(o.raw[:0], v...)
	case string:
		o.raw = []byte(v)
	case nil:
		o.raw = nil
	default:
		return fmt.Errorf("category options: неподдерживаемый тип %T", src)
	}
	return nil
}
