package util

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/manifoldco/promptui"
)

var (
	IsDebug bool

	// Style definitions for help and errors
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			Underline(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Bold(true)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#45B7D1")).
			Italic(true)

	exampleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	debugErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF4757")).
			Padding(1, 2)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA726")).
			Bold(true)
)

// SetDebugMode sets the debug mode
func SetDebugMode(debug bool) {
	IsDebug = debug
}

// GetUserInput prompts the user and returns the entered line.
func GetUserInput(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
	}
	return prompt.Run()
}

// ErrorHandler returns a stylized error message
func ErrorHandler(err error) string {
	if IsDebug {
		errorMessage := "🚨 DEBUG ERROR 🔍"
		fullError := fmt.Sprintf("%+v", err)

		styledHeader := errorStyle.Render(errorMessage)
		styledError := debugErrorStyle.Render(fullError)

		return fmt.Sprintf("%s\n%s", styledHeader, styledError)
	}

	baseError := fmt.Sprintf("%v", err)
	hint := "run the program with -debug to see details"

	styledError := errorStyle.Render("❌ " + baseError)
	styledHint := warningStyle.Render("💡 " + hint)

	return fmt.Sprintf("%s\n%s", styledError, styledHint)
}

// Helper prints the help message
func Helper() {
	title := titleStyle.Render("🎌 pahedl - AnimePahe Terminal Downloader")

	usage := helpStyle.Render("📖 Usage:")
	usageExamples := []string{
		"  pahedl",
		"  pahedl " + optionStyle.Render("[options]"),
	}

	note := helpStyle.Render("📝 Note:") + " Add (Dub) or (Sub) to your search to filter results"
	example := "  Example: " + exampleStyle.Render("\"Jujutsu Kaisen (Dub)\"") + " or " + exampleStyle.Render("\"Attack on Titan (Sub)\"")

	options := helpStyle.Render("⚙️  Options:")
	optionsList := []string{
		"  " + optionStyle.Render("-debug") + "      enable debug logging",
		"  " + optionStyle.Render("-dir") + "        download root directory",
		"  " + optionStyle.Render("-browser") + "    path to the Brave executable",
		"  " + optionStyle.Render("-headless") + "   run the browser headless (default true)",
		"  " + optionStyle.Render("-history") + "    show recent downloads and exit",
		"  " + optionStyle.Render("-version") + "    show version information",
		"  " + optionStyle.Render("-help") + "       show this message",
	}

	fmt.Println(title)
	fmt.Println()
	fmt.Println(usage)
	for _, line := range usageExamples {
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Println(note)
	fmt.Println(example)
	fmt.Println()
	fmt.Println(options)
	for _, line := range optionsList {
		fmt.Println(line)
	}
}
