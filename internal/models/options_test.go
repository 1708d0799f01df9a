package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCategoryOptions_ITCode(t *testing.T) {
	raw := json.RawMessage(`{"phase":"mvp","priority":"security","tech_level":"beginner"}`)

	opts, err := NewCategoryOptions(CategoryITCode, raw)
	assert.NoError(t, err)
	assert.NotNil(t, opts.ITCode)
	assert.Nil(t, opts.Translation)
	assert.Nil(t, opts.Academic)
	assert.Equal(t, "mvp", opts.ITCode.Phase)
	assert.Equal(t, "security", opts.ITCode.Priority)
}

func TestNewCategoryOptions_Translation(t *testing.T) {
	raw := json.RawMessage(`{"relationship":"existing_trouble","purpose":"apology","concerns":["condescending","grammar"]}`)

	opts, err := NewCategoryOptions(CategoryTranslation, raw)
	assert.NoError(t, err)
	assert.NotNil(t, opts.Translation)
	assert.Equal(t, []string{"condescending", "grammar"}, opts.Translation.Concerns)
}

func TestNewCategoryOptions_UnknownCategory(t *testing.T) {
	raw := json.RawMessage(`{}`)

	_, err := NewCategoryOptions("design", raw)
	assert.Error(t, err)
}

func TestNewCategoryOptions_EmptyPayload(t *testing.T) {
	_, err := NewCategoryOptions(CategoryITCode, nil)
	assert.Error(t, err)
}

func TestCategoryOptions_JSONRoundTrip(t *testing.T) {
	raw := json.RawMessage(`{"medium":"peer_reviewed","focus":"existence_check","policy":"point_out_only"}`)

	opts, err := NewCategoryOptions(CategoryAcademic, raw)
	assert.NoError(t, err)

	encoded, err := json.Marshal(opts)
	assert.NoError(t, err)

	var decoded CategoryOptions
	assert.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.NoError(t, decoded.Resolve(CategoryAcademic))
	assert.NotNil(t, decoded.Academic)
	assert.Equal(t, opts.Academic, decoded.Academic)
}

func TestCategoryOptions_ScanResolve(t *testing.T) {
	var opts CategoryOptions
	assert.NoError(t, opts.Scan([]byte(`{"phase":"learning","priority":"fix","tech_level":"non_engineer"}`)))
	assert.NoError(t, opts.Resolve(CategoryITCode))
	assert.NotNil(t, opts.ITCode)
	assert.Equal(t, "learning", opts.ITCode.Phase)
}

func TestCategoryOptions_ResolveMismatch(t *testing.T) {
	// Анкета it_code не совпадает с формой translation только частично:
	// отсутствующие поля дают пустой вариант, но невалидный JSON отклоняется.
	var opts CategoryOptions
	assert.NoError(t, opts.Scan([]byte(`not-json`)))
	assert.Error(t, opts.Resolve(CategoryITCode))
}

func TestIsAllowedBudget(t *testing.T) {
	assert.True(t, IsAllowedBudget(5000))
	assert.True(t, IsAllowedBudget(50000))
	assert.False(t, IsAllowedBudget(0))
	assert.False(t, IsAllowedBudget(4999))
	assert.False(t, IsAllowedBudget(-1000))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(RequestStatusCompleted))
	assert.True(t, IsTerminalStatus(RequestStatusCancelled))
	assert.False(t, IsTerminalStatus(RequestStatusOpen))
	assert.False(t, IsTerminalStatus(RequestStatusInProgress))
}
