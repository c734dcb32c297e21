package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/example/vocabot/internal/quiz"
	"github.com/example/vocabot/pkg/models"
)

const (
	msgChooseLanguage     = "Выберите язык:"
	msgInvalidLanguage    = "Такого языка не существует. Выберите из: "
	msgEmptyDictionary    = "Словарь пуст :("
	msgEnterWord          = "Введите слово"
	msgEnterDefinition    = "Введите перевод/определение:"
	msgOfferAdd           = "Такого слова нет в словаре. Хотите добавить определение?"
	msgDeclined           = "Нет, так нет :("
	msgDeleted            = "Слово успешно удалено"
	msgAdded              = "Добавлено"
	msgChooseQuiz         = "Выберите викторину"
	msgEnterCount         = "Сколько вопросов?"
	msgInvalidCount       = "Введите положительное число"
	msgNotEnoughWords     = "Недостаточно слов в словаре для этой викторины"
	msgCorrect            = "+1"
	msgCancelled          = "Cancelled."
	msgImported           = "Слова успешно добавлены (%d)"
	msgImportEmpty        = "В файле не найдено ни одной пары слово, перевод"
	msgOnlyCSV            = "Бот принимает только файлы формата CSV или XLSX"
	msgUnreadableDocument = "Не удалось прочитать файл"
	msgStoreUnavailable   = "Словарь временно недоступен, попробуйте ещё раз"
	msgInternalError      = "Что-то пошло не так, начнём сначала"
	msgStepFailed         = "Не удалось выполнить действие, попробуйте ещё раз"
	msgQuizAborted        = "Не удалось продолжить тест"
	msgImportDescription  = "Для добавление слов через отправку CSV файла, его необходимо назвать \"язык.csv\". " +
		"Например: eng.csv, ru.csv\nТакже слова в файле должны соответствовать шаблону: \"слово, перевод\" " +
		"Например: book, бронировать"
)

// menuEntry is a command shown in the help text and the menu keyboard
type menuEntry struct {
	command string
	label   string
}

var menu = []menuEntry{
	{command: "random_5", label: "5 случайных слов из словаря"},
	{command: "select", label: "Получить перевод/определение слова из словаря"},
	{command: "select_5", label: "Получить 5 последних слов из словаря"},
	{command: "add", label: "Добавить новое слово или определение"},
	{command: "delete", label: "Удалить слово"},
	{command: "quizzes", label: "Викторины"},
}

const startButton = "Старт"

var (
	yesTokens = []string{"да", "yes", "д", "y"}
	noTokens  = []string{"нет", "no", "н", "n"}
)

// quizLabels are the quiz choice buttons, in keyboard order
var quizLabels = []struct {
	kind  quiz.Kind
	label string
}{
	{kind: quiz.MultipleChoice, label: "Правильный перевод"},
	{kind: quiz.FillBlank, label: "Пропуск букв"},
	{kind: quiz.MatchPairs, label: "Найти пары"},
}

var countedCommand = regexp.MustCompile(`^(random|select)_(\d+)$`)

func helpText() string {
	lines := make([]string, 0, len(menu))
	for _, e := range menu {
		lines = append(lines, "/"+e.command+" - "+e.label)
	}
	return strings.Join(lines, "\n")
}

func menuKeyboard() *Keyboard {
	labels := make([]string, 0, len(menu))
	for _, e := range menu {
		labels = append(labels, e.label)
	}
	return Buttons(labels...)
}

func yesNoKeyboard() *Keyboard {
	return Buttons("Да", "Нет")
}

func quizKeyboard() *Keyboard {
	labels := make([]string, 0, len(quizLabels))
	for _, q := range quizLabels {
		labels = append(labels, q.label)
	}
	return Buttons(labels...)
}

// commandForButton maps a menu button text to its command name
func commandForButton(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, startButton) {
		return "start", true
	}
	for _, e := range menu {
		if strings.EqualFold(text, e.label) {
			return e.command, true
		}
	}
	return "", false
}

func quizKindForLabel(text string) (quiz.Kind, bool) {
	text = strings.TrimSpace(text)
	for _, q := range quizLabels {
		if strings.EqualFold(text, q.label) {
			return q.kind, true
		}
	}
	return 0, false
}

func matchToken(text string, tokens []string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, t := range tokens {
		if text == t {
			return true
		}
	}
	return false
}

// parseCount parses a positive question or term count
func parseCount(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func invalidLanguageText(languages []string) string {
	return msgInvalidLanguage + strings.Join(languages, ", ")
}

func quizFinishedText(correct, total int) string {
	return fmt.Sprintf("Тестирование завершено. %d/%d", correct, total)
}

func wrongAnswerText(solution string) string {
	return ":( ответ: " + solution
}

func addedText(word, input string) string {
	return msgAdded + "\n" + strings.ToUpper(word) + " - " + input
}

func revealText(q *quiz.Question) string {
	return strings.ToUpper(q.MultipleChoice.Word) + " - " + q.Solution()
}

func pollQuestion(n int, word string) string {
	return fmt.Sprintf("%d. %s", n, word)
}

// formatDefinitions lists the definitions of one word:
//
//	BOOK
//	1. bound volume
//	2. to reserve
func formatDefinitions(word string, definitions []string) string {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(word))
	for i, d := range definitions {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, d)
	}
	return sb.String()
}

// formatTerms groups terms by word in first-seen order:
//
//	BOOK - 1. bound volume; 2. to reserve
//	RUN - to move fast
func formatTerms(terms []models.Term) string {
	var order []string
	grouped := make(map[string][]string)
	for _, t := range terms {
		if _, ok := grouped[t.Word]; !ok {
			order = append(order, t.Word)
		}
		grouped[t.Word] = append(grouped[t.Word], t.Definition)
	}

	lines := make([]string, 0, len(order))
	for _, word := range order {
		defs := grouped[word]
		if len(defs) == 1 {
			lines = append(lines, strings.ToUpper(word)+" - "+defs[0])
			continue
		}
		numbered := make([]string, len(defs))
		for i, d := range defs {
			numbered[i] = fmt.Sprintf("%d. %s", i+1, d)
		}
		lines = append(lines, strings.ToUpper(word)+" - "+strings.Join(numbered, "; "))
	}
	return strings.Join(lines, "\n")
}

// uniqueStrings drops blanks and repeats, keeping order
func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
