package autoresearch

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

const (
	plannerSystemPrompt = "You are a research planning expert. Your job is to generate targeted search queries " +
		"that will help gather comprehensive information on a research topic. " +
		"Always respond with valid JSON."

	reflectorSystemPrompt = "You are a research quality evaluator. You assess whether search results are " +
		"sufficient to write a comprehensive research report, or if more targeted searches are needed. " +
		"Always respond with valid JSON."

	synthesizerSystemPrompt = "You are an expert research analyst. Write clear, well-structured research reports " +
		"based on provided source material. Use markdown formatting."
)

//go:embed templates/planner.md
var plannerPromptTemplate string

//go:embed templates/reflector.md
var reflectorPromptTemplate string

//go:embed templates/synthesizer.md
var synthesizerPromptTemplate string

var (
	plannerTmpl     = template.Must(template.New("planner").Parse(plannerPromptTemplate))
	reflectorTmpl   = template.Must(template.New("reflector").Parse(reflectorPromptTemplate))
	synthesizerTmpl = template.Must(template.New("synthesizer").Parse(synthesizerPromptTemplate))
)

type plannerTemplateData struct {
	Topic string
}

type reflectorTemplateData struct {
	Topic       string
	Results     []Result
	ResultCount int
	Iteration   int
}

type synthesizerTemplateData struct {
	Topic   string
	Sources []Result
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("template", tmpl.Name()))
	}
	return buf.String(), nil
}

func buildPlannerPrompt(topic string) ([]Message, error) {
	user, err := render(plannerTmpl, plannerTemplateData{Topic: topic})
	if err != nil {
		return nil, err
	}
	return []Message{SystemMessage(plannerSystemPrompt), UserMessage(user)}, nil
}

func buildReflectorPrompt(data reflectorTemplateData) ([]Message, error) {
	user, err := render(reflectorTmpl, data)
	if err != nil {
		return nil, err
	}
	return []Message{SystemMessage(reflectorSystemPrompt), UserMessage(user)}, nil
}

func buildSynthesizerPrompt(data synthesizerTemplateData) ([]Message, error) {
	user, err := render(synthesizerTmpl, data)
	if err != nil {
		return nil, err
	}
	return []Message{SystemMessage(synthesizerSystemPrompt), UserMessage(user)}, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
