// Package i18n holds the supported display languages and the few strings
// the server itself emits (the chat greeting). Full UI string tables live
// client-side.
package i18n

// DefaultLanguage is used until a language has been persisted.
const DefaultLanguage = "en"

var supported = map[string]bool{
	"en": true,
	"es": true,
	"fr": true,
	"de": true,
	"hi": true,
}

// Supported reports whether lang is a known language code.
func Supported(lang string) bool {
	return supported[lang]
}

var greetings = map[string]string{
	"en": "Hello! I'm GlucoGuide, your AI assistant for diabetes management. How can I help you today?",
	"es": "¡Hola! Soy GlucoGuide, tu asistente de IA para el manejo de la diabetes. ¿En qué puedo ayudarte hoy?",
	"fr": "Bonjour ! Je suis GlucoGuide, votre assistant IA pour la gestion du diabète. Comment puis-je vous aider ?",
	"de": "Hallo! Ich bin GlucoGuide, dein KI-Assistent für das Diabetesmanagement. Wie kann ich dir heute helfen?",
	"hi": "नमस्ते! मैं GlucoGuide हूँ, मधुमेह प्रबंधन के लिए आपका AI सहायक। मैं आज आपकी कैसे मदद कर सकता हूँ?",
}

// Greeting returns the chat welcome message for lang, falling back to
// English for unknown codes.
func Greeting(lang string) string {
	if g, ok := greetings[lang]; ok {
		return g
	}
	return greetings[DefaultLanguage]
}
