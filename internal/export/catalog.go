package export

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the canonical source locale; message keys are its strings
// and untranslated tags fall back to it.
var BaseLocale = language.AmericanEnglish

func init() {
	for key, value := range map[string]string{
		"Dungeon: %s":         "Masmorra: %s",
		"Created: %s":         "Criada em: %s",
		"Rooms: %d":           "Salas: %d",
		"Notes: %s":           "Notas: %s",
		"Room %d:":            "Sala %d:",
		"Room %d (entrance):": "Sala %d (entrada):",
		"Features:":           "Características:",
		"Passages:":           "Passagens:",
		"to room %d via %s":   "para a sala %d por %s",
		"Theme: %s":           "Tema: %s",
	} {
		message.SetString(language.BrazilianPortuguese, key, value)
	}
}
