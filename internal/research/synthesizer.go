package research

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/veritas-health/medresearch/models"
	"github.com/veritas-health/medresearch/provider"
)

// Outcome tags which path produced an Answer.
type Outcome int

const (
	OutcomeModel Outcome = iota
	OutcomeFallback
	OutcomeApology
)

const apologyResponse = "I apologize, but I encountered an error while processing your request. Please try again."

// Synthesizer turns an assembled context into an Answer. With a configured
// provider it makes exactly one generation call; on any provider failure, or
// with no provider at all, it renders the deterministic fallback document.
// Provider presence is checked fresh on every call.
type Synthesizer struct {
	provider provider.Provider // nil means permanently on the fallback path
	logger   *log.Logger
}

func NewSynthesizer(p provider.Provider) *Synthesizer {
	return &Synthesizer{
		provider: p,
		logger:   log.New(log.Writer(), "[SYNTH] ", log.LstdFlags),
	}
}

// Synthesize produces the Answer for a query. The returned Outcome reports
// whether the model, the fallback renderer, or the apology path ran.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, asm Assembled) (answer models.Answer, outcome Outcome) {
	// Assembly of either path must never take the request down; citation
	// integrity is sacrificed only here.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("synthesis panicked: %v", r)
			answer = models.Answer{
				Response:  apologyResponse,
				Sources:   []models.Source{},
				Timestamp: time.Now(),
			}
			outcome = OutcomeApology
		}
	}()

	if s.provider != nil {
		text, err := s.provider.Generate(ctx, buildPrompt(query, asm))
		if err == nil {
			return models.Answer{
				Response:  text,
				Sources:   asm.Sources,
				Timestamp: time.Now(),
			}, OutcomeModel
		}
		// One-directional per call: no retry against the model.
		s.logger.Printf("generation failed, rendering fallback: %v", err)
	}

	synthesisFallbacks.Inc()
	return models.Answer{
		Response:  renderFallback(query, asm),
		Sources:   asm.Sources,
		Timestamp: time.Now(),
	}, OutcomeFallback
}

func buildPrompt(query string, asm Assembled) string {
	return fmt.Sprintf(`
You are an expert medical research assistant. Answer the following medical question using the provided sources.

QUESTION: %s

WEB SEARCH RESULTS:
%s

LOCAL MEDICAL DOCUMENTS:
%s

INSTRUCTIONS:
- Provide a clear, comprehensive answer
- Use [number] to cite sources
- Focus on evidence-based information
- Include symptoms, causes, treatments when relevant
- Always recommend consulting healthcare professionals
- Be precise and factual

Answer:
`, query, asm.WebContext, asm.LocalContext)
}

// renderFallback produces the structured markdown served without a model.
// It is byte-identical for identical inputs and touches no network.
func renderFallback(query string, asm Assembled) string {
	webSection := "No web sources available at this time."
	if asm.WebContext != "" {
		webSection = cutAtRune(asm.WebContext, 800)
	}

	return fmt.Sprintf(`# 🔬 Medical Research Results

## 📝 Query: %s

### 📊 Search Summary
- **Web Sources Found:** %d results
- **Local Documents:** %d results
- **Total References:** %d sources

---

## 🌐 Web Research Results

%s

---

## 📋 Key Findings

- ✅ **Comprehensive Search**: This system searched multiple medical databases and web sources
- ⚕️ **Medical Focus**: Results are filtered for medical and healthcare relevance
- 📚 **Source Verification**: All sources include URLs for fact-checking
- 🔍 **Evidence-Based**: Information compiled from reputable medical sources

---

## ⚠️ Important Medical Disclaimer

> **This information is for educational purposes only and should not replace professional medical advice, diagnosis, or treatment. Always consult qualified healthcare professionals for medical decisions.**

---

## 📖 Additional Resources

Refer to the sources listed above for detailed information and verification.`,
		query, asm.WebTotal, asm.LocalTotal, asm.WebTotal+asm.LocalTotal, webSection)
}
