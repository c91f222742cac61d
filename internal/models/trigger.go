package models

const (
	TriggerInputBinary = "binary"
	TriggerInputScale  = "scale"
	TriggerInputEnum   = "enum"
	TriggerInputGroup  = "group"
)

// Keys of the one cross-trigger dependency in the catalog: period_pain
// is shown only while on_period carries numeric value 1.
const (
	TriggerKeyOnPeriod   = "on_period"
	TriggerKeyPeriodPain = "period_pain"
)

// Trigger is a global catalog entry for a tracked contextual factor.
// Group-type triggers organize the catalog tree and are never logged.
type Trigger struct {
	ID        uint            `gorm:"primaryKey"`
	Key       string          `gorm:"not null;uniqueIndex"`
	Label     string          `gorm:"not null"`
	Category  string          `gorm:"not null"`
	InputType string          `gorm:"not null"`
	Options   *TriggerOptions `gorm:"serializer:json"`
	ParentID  *uint
	Active    bool `gorm:"not null;default:true"`
	SortOrder int  `gorm:"not null;default:0"`
}

// TriggerOptions is the raw stored payload; Input decodes it into the
// per-input-type variant.
type TriggerOptions struct {
	Min     *int     `json:"min,omitempty"`
	Max     *int     `json:"max,omitempty"`
	Labels  []string `json:"labels,omitempty"`
	Choices []string `json:"choices,omitempty"`
}

type TriggerInput interface {
	isTriggerInput()
}

type BinaryInput struct{}

type ScaleInput struct {
	Min    int
	Max    int
	Labels []string
}

type EnumInput struct {
	Choices []string
}

type GroupInput struct{}

func (BinaryInput) isTriggerInput() {}
func (ScaleInput) isTriggerInput()  {}
func (EnumInput) isTriggerInput()   {}
func (GroupInput) isTriggerInput()  {}

// Input returns the typed shape of this trigger's value. Unknown input
// types decode as binary so a bad catalog row degrades to yes/no.
func (trigger Trigger) Input() TriggerInput {
	switch trigger.InputType {
	case TriggerInputGroup:
		return GroupInput{}
	case TriggerInputScale:
		scale := ScaleInput{Min: SeverityMin, Max: SeverityMax}
		if trigger.Options != nil {
			if trigger.Options.Min != nil {
				scale.Min = *trigger.Options.Min
			}
			if trigger.Options.Max != nil {
				scale.Max = *trigger.Options.Max
			}
			scale.Labels = trigger.Options.Labels
		}
		return scale
	case TriggerInputEnum:
		enum := EnumInput{}
		if trigger.Options != nil {
			enum.Choices = trigger.Options.Choices
		}
		return enum
	default:
		return BinaryInput{}
	}
}

// TriggerValue is one logged value: the raw numeric/index part, an
// optional free-text part, and the human-readable label captured at the
// moment of the UI action.
type TriggerValue struct {
	Numeric *float64 `json:"numeric,omitempty"`
	Text    *string  `json:"text,omitempty"`
	Label   string   `json:"label,omitempty"`
}

func (value TriggerValue) IsNull() bool {
	return value.Numeric == nil && value.Text == nil
}

type UserTriggerPref struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:uidx_trigger_pref_user_trigger"`
	TriggerID uint `gorm:"not null;uniqueIndex:uidx_trigger_pref_user_trigger"`
	Enabled   bool `gorm:"not null;default:true"`
	SortOrder int  `gorm:"not null;default:0"`
}
