package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leofalp/calcagent/providers/tool/toolkit"
)

var (
	accentColor  = lipgloss.Color("#3B82F6")
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")

	titleStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	answerStyle = lipgloss.NewStyle().Foreground(successColor)
	errorStyle  = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	promptStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accentColor).
			Padding(0, 2)
)

const systemPrompt = `Eres un asistente útil que responde siempre en español.

Dispones de tres herramientas:
- calculadora: para CUALQUIER operación aritmética, por sencilla que sea. Nunca calcules de memoria. Traduce la pregunta a una expresión (por ejemplo, "el 15% de 200" es "200 * 0.15").
- busqueda_web: para información actual o que cambia con el tiempo (noticias, precios, cotizaciones, clima).
- wikipedia: para datos enciclopédicos (biografías, historia, geografía, ciencia, definiciones).

Puedes combinar herramientas: busca primero los datos y después calcula con ellos.
Si una herramienta devuelve un error o no está disponible, explícalo y responde con lo que sepas.
Responde de forma clara y concisa, citando la fuente cuando uses la búsqueda o Wikipedia.`

var demoQuestions = []string{
	"¿Cuánto es 25 multiplicado por 4?",
	"¿Cuál es el 15% de 200?",
	"¿Quién inventó la bombilla eléctrica?",
}

func banner() string {
	body := strings.Join([]string{
		titleStyle.Render("🤖 AGENTE CALCULADORA + BÚSQUEDA"),
		mutedStyle.Render("DeepSeek + herramientas"),
		"",
		"Herramientas disponibles:",
		"  📊 Calculadora  - Operaciones matemáticas",
		"  🔍 Búsqueda Web - Información actual",
		"  📚 Wikipedia    - Datos enciclopédicos",
		"",
		"Comandos especiales:",
		"  'salir' o 'exit' - Terminar el programa",
		"  'ayuda' o 'help' - Mostrar ejemplos",
		"  'tools'          - Ver herramientas disponibles",
	}, "\n")
	return bannerStyle.Render(body)
}

const helpText = `📋 EJEMPLOS DE PREGUNTAS:

🔢 Cálculos matemáticos:
   • "¿Cuánto es 25 multiplicado por 16?"
   • "¿Cuál es el 15% de 1500?"
   • "¿Cuál es la raíz cuadrada de 144?"
   • "Si tengo 3 pizzas de 8 porciones, ¿cuántas porciones tengo?"

🔍 Búsqueda de información actual:
   • "¿Cuál es la cotización del dólar hoy?"
   • "¿Qué noticias hay sobre inteligencia artificial?"
   • "¿Cuál es el clima en Madrid?"

📚 Consultas enciclopédicas:
   • "¿Quién fue Albert Einstein?"
   • "¿Cuál es la capital de Australia?"
   • "¿Qué es la fotosíntesis?"

💡 Preguntas combinadas:
   • "¿Cuántos años han pasado desde que se fundó Apple?"
   • "¿Cuántos kilómetros hay de Madrid a Barcelona?"`

const configTip = `💡 Tip: Crea un archivo .env con tu API key de DeepSeek:
   echo "DEEPSEEK_API_KEY=sk-..." > .env
   o ejecuta 'calcagent config path' para ver dónde va el archivo de configuración.`

// toolsText lists each capability with its description and configuration.
func toolsText(entries []toolkit.Entry) string {
	var b strings.Builder
	b.WriteString("🔧 Herramientas disponibles:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "   • %s: %s\n", e.Name, e.Description)
		fmt.Fprintf(&b, "     estado: %s\n", e.Status)
	}
	return strings.TrimRight(b.String(), "\n")
}
