package model

import "github.com/secmon-lab/duesoon/pkg/domain/types"

// DefaultCategoryLabel is used for notifications without a category
const DefaultCategoryLabel = "Notificação"

// LabelTable maps notification categories to the labels shown in outbound messages
type LabelTable struct {
	labels   map[types.Category]string
	fallback string
}

// DefaultLabelTable returns the built-in category labels
func DefaultLabelTable() *LabelTable {
	return NewLabelTable(map[types.Category]string{
		types.CategoryServiceMaintenance: "🔧 Manutenção",
		types.CategoryServiceRevision:    "🔍 Revisão",
		types.CategoryServiceSpraying:    "🚁 Pulverização",
		types.CategoryDemonstration:      "📊 Demonstração",
		types.CategorySale:               "💰 Venda",
		types.CategoryCommission:         "💵 Comissão",
		types.CategoryTask:               "📝 Tarefa",
		types.CategoryFollowup:           "📌 Follow-up",
	}, DefaultCategoryLabel)
}

// NewLabelTable copies labels into a new table
func NewLabelTable(labels map[types.Category]string, fallback string) *LabelTable {
	t := &LabelTable{
		labels:   make(map[types.Category]string, len(labels)),
		fallback: fallback,
	}
	for k, v := range labels {
		t.labels[k] = v
	}
	if t.fallback == "" {
		t.fallback = DefaultCategoryLabel
	}
	return t
}

// With returns a copy of t with overrides applied
func (t *LabelTable) With(overrides map[types.Category]string) *LabelTable {
	merged := NewLabelTable(t.labels, t.fallback)
	for k, v := range overrides {
		merged.labels[k] = v
	}
	return merged
}

// WithFallback returns a copy of t using label for notifications without a
// category. An empty label keeps the current fallback.
func (t *LabelTable) WithFallback(label string) *LabelTable {
	if label == "" {
		label = t.fallback
	}
	return NewLabelTable(t.labels, label)
}

// Label returns the label of c. Unknown categories map to the raw tag and an
// empty category maps to the fallback label.
func (t *LabelTable) Label(c types.Category) string {
	if c == "" {
		return t.fallback
	}
	if label, ok := t.labels[c]; ok {
		return label
	}
	return c.String()
}
