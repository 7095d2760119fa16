package core

import (
	"strings"

	"thrive-chatbot/pkg"
)

// Compose builds the context-rich prompt sent on the first turn of a
// session and by the single-shot coach.  Missing values render as empty
// text.  Profile fields fall back to the latest entry when the profile row
// leaves them blank.
func Compose(profile pkg.UserProfile, entry pkg.HealthEntry, documentText, userMessage string) string {
	age := profile.AgeText()
	if age == "" && entry.Age != nil {
		age = pkg.UserProfile{Age: entry.Age}.AgeText()
	}

	var b strings.Builder
	b.WriteString(PersonaDirective)
	b.WriteString("\n\nUser Profile:\n")
	field(&b, "Name", profile.Name)
	field(&b, "Age", age)
	field(&b, "Sex", firstNonEmpty(profile.Sex, entry.Sex))
	field(&b, "Health Goals", firstNonEmpty(profile.HealthGoals, entry.HealthGoals))
	b.WriteString("\nLatest Entry:\n")
	field(&b, "Symptoms", entry.Symptoms)
	field(&b, "Habits", entry.Habits)
	b.WriteString("\nHealth Document:\n")
	b.WriteString(documentText)
	b.WriteString("\n\nMessage:\n")
	b.WriteString(userMessage)
	return b.String()
}

func field(b *strings.Builder, label, value string) {
	b.WriteString("- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
