package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/prinik8/AIcare/internal/domain/knowledge"
	"github.com/prinik8/AIcare/internal/platform/logger"
	"github.com/prinik8/AIcare/internal/ports/llm"
)

const researchFallbackSummary = "Research completed. Found information about hypertension management for elderly patients."

// defaultResearchTopic es el tema por defecto cuando nadie setea otro.
const defaultResearchTopic = "hypertension management for elderly patients"

// ResearchAgent recupera notas del knowledge store por similitud y pide
// al LLM una respuesta fundada en ellas.
type ResearchAgent struct {
	store *knowledge.Store
	gen   llm.Generator
	log   logger.Logger
	topic string
}

func NewResearchAgent(store *knowledge.Store, gen llm.Generator, log logger.Logger) *ResearchAgent {
	return &ResearchAgent{store: store, gen: gen, log: log, topic: defaultResearchTopic}
}

// SetTopic cambia el tema a investigar en la próxima corrida.
func (a *ResearchAgent) SetTopic(topic string) {
	if topic = strings.TrimSpace(topic); topic != "" {
		a.topic = topic
	}
}

func (a *ResearchAgent) Name() string { return string(KindResearch) }

func (a *ResearchAgent) Run(ctx context.Context) (Report, error) {
	report := Report{Agent: a.Name()}

	var notes []knowledge.ScoredNote
	if a.store != nil {
		found, err := a.store.Search(ctx, a.topic, 3)
		if err != nil {
			a.log.Warn("research agent: knowledge search failed", logger.Fields{
				"topic": a.topic,
				"error": err.Error(),
			})
		} else {
			notes = found
		}
	}

	for _, n := range notes {
		report.Details = append(report.Details, fmt.Sprintf("note (score %.3f): %s", n.Score, n.Note.Content))
	}

	if a.gen == nil {
		report.Summary = researchFallbackSummary
		return report, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a care research assistant. Topic: %s.\n", a.topic)
	if len(notes) > 0 {
		sb.WriteString("Ground your answer on these notes:\n")
		for _, n := range notes {
			sb.WriteString("- " + n.Note.Content + "\n")
		}
	}
	sb.WriteString("Write a short, practical research summary for the caregiver.")

	summary, err := a.gen.Generate(ctx, sb.String())
	if err != nil {
		a.log.Warn("research agent: llm unavailable, using fallback", logger.Fields{"error": err.Error()})
		report.Summary = researchFallbackSummary
		return report, nil
	}

	report.Summary = summary
	return report, nil
}
