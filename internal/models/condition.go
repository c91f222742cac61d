package models

type Condition struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	Name      string `gorm:"not null"`
	Icon      string `gorm:"not null"`
	Color     string `gorm:"not null"`
	IsBuiltin bool   `gorm:"not null;default:false"`
}

type BuiltinCondition struct {
	Name  string
	Icon  string
	Color string
}

func DefaultBuiltinConditions() []BuiltinCondition {
	return []BuiltinCondition{
		{Name: "Migraine", Icon: "🤕", Color: "#FF4444"},
		{Name: "Fatigue", Icon: "😴", Color: "#95A5A6"},
		{Name: "Nausea", Icon: "🤢", Color: "#7CB342"},
		{Name: "Joint pain", Icon: "🦴", Color: "#8E6E53"},
		{Name: "Brain fog", Icon: "🌫️", Color: "#5C6BC0"},
		{Name: "Anxiety", Icon: "😰", Color: "#9B59B6"},
		{Name: "Bloating", Icon: "🎈", Color: "#3498DB"},
		{Name: "Back pain", Icon: "💢", Color: "#E74C3C"},
		{Name: "Dizziness", Icon: "💫", Color: "#FFA500"},
		{Name: "Insomnia", Icon: "🌙", Color: "#34495E"},
	}
}
