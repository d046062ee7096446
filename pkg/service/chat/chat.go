// Package chat drives the conversational answering pipeline: per-source
// answers, dual-source synthesis, and the general fallback.
package chat

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
)

// NoRelevantInfo is the sentinel a per-source answer contains when the
// provided context does not cover the query
const NoRelevantInfo = "NO_RELEVANT_INFO"

// HasRelevantInfo reports whether a per-source answer carries usable content
func HasRelevantInfo(answer string) bool {
	return !strings.Contains(answer, NoRelevantInfo)
}

// per-source answers see the most recent 6 history messages; the general
// fallback sees 10 (roughly 5 turns)
const (
	sourceHistoryWindow  = 6
	generalHistoryWindow = 10
)

// Service generates conversational answers
type Service interface {
	// AnswerFromSource answers using only the given source context. The
	// answer contains NoRelevantInfo when the context does not cover the
	// query.
	AnswerFromSource(ctx context.Context, query, sourceContext, sourceLabel string, history []*model.ChatMessage) (string, error)

	// Synthesize merges independent KB and DOC answers into one attributed
	// response ending with a SOURCES section
	Synthesize(ctx context.Context, query, kbAnswer, docAnswer, kbRefs, docRefs string) (string, error)

	// AnswerGeneral answers from conversation history and general knowledge
	AnswerGeneral(ctx context.Context, query, docContext string, history []*model.ChatMessage) (string, error)
}

type client struct {
	llmClient gollem.LLMClient
}

// New creates a chat service with the provided LLM client
func New(llmClient gollem.LLMClient) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &client{llmClient: llmClient}, nil
}

func (c *client) AnswerFromSource(ctx context.Context, query, sourceContext, sourceLabel string, history []*model.ChatMessage) (string, error) {
	prompt := buildSourcePrompt(sourceLabel, sourceContext)
	input := buildInput(history, sourceHistoryWindow, query)
	return c.generate(ctx, prompt, input)
}

func (c *client) Synthesize(ctx context.Context, query, kbAnswer, docAnswer, kbRefs, docRefs string) (string, error) {
	prompt := buildSynthesisPrompt(kbAnswer, docAnswer, kbRefs, docRefs)
	return c.generate(ctx, prompt, []gollem.Input{gollem.Text(query)})
}

func (c *client) AnswerGeneral(ctx context.Context, query, docContext string, history []*model.ChatMessage) (string, error) {
	prompt := generalSystemPrompt + "\n\nContext:\n" + docContext
	input := buildInput(history, generalHistoryWindow, query)
	return c.generate(ctx, prompt, input)
}

func (c *client) generate(ctx context.Context, systemPrompt string, input []gollem.Input) (string, error) {
	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, input...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate answer")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("empty LLM response")
	}
	return resp.Texts[0], nil
}

// buildInput flattens the trailing history window and the query into one
// transcript message. Sessions are stateless between requests, so prior
// turns travel inside the input.
func buildInput(history []*model.ChatMessage, window int, query string) []gollem.Input {
	if len(history) > window {
		history = history[len(history)-window:]
	}

	var sb strings.Builder
	for _, m := range history {
		switch m.Role {
		case types.RoleUser:
			sb.WriteString("User: ")
		default:
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}
	sb.WriteString("User: ")
	sb.WriteString(query)

	return []gollem.Input{gollem.Text(sb.String())}
}

func buildSourcePrompt(sourceLabel, sourceContext string) string {
	var sb strings.Builder
	sb.WriteString("You are a compliance assistant for SkyElectric. Answer the user's query using ONLY the provided ")
	sb.WriteString(sourceLabel)
	sb.WriteString(" context below.\n\nRULES:\n")
	sb.WriteString("- Provide direct, substantive answers. NEVER say \"I will answer\" or defer.\n")
	sb.WriteString("- If the context contains questions (test plan, questionnaire), answer ALL of them with detailed content.\n")
	sb.WriteString("- NEVER list questions without answering them.\n")
	sb.WriteString("- **ALWAYS provide actual numerical values, measurements, thresholds, and limits** when they appear in the context. Do NOT just reference \"see Table X\" or \"as per Clause Y\" — quote the actual data.\n")
	sb.WriteString("- If the context references a table or figure but the actual values are NOT present in the provided text, explicitly state: \"The exact values from [Table/Figure X] are not available in the retrieved context.\"\n")
	sb.WriteString("- **SELF-CONTAINED ANSWERS**: The user CANNOT see the source documents. Your answer must be fully self-contained and understandable on its own. If the context references a standard, a performance level, or a classification, you MUST explain what that standard/criteria/level actually means and requires in practical terms.\n")
	sb.WriteString("- If the context does not contain relevant information for the query, respond with: \"" + NoRelevantInfo + "\"\n")
	sb.WriteString("- Use **bold** for key terms.\n")
	sb.WriteString("- Do NOT include a SOURCES section — just provide the answer content.\n\n")
	sb.WriteString(sourceLabel)
	sb.WriteString(" Context:\n")
	sb.WriteString(sourceContext)
	return sb.String()
}

func buildSynthesisPrompt(kbAnswer, docAnswer, kbRefs, docRefs string) string {
	var sb strings.Builder
	sb.WriteString("You are a compliance assistant for SkyElectric. You have received two separate analyses of the same query — one from the verified Knowledge Base (KB) and one from a user-uploaded Document (DOC).\n\n")
	sb.WriteString("YOUR TASK: Combine both analyses into a single, comprehensive response.\n\n")
	sb.WriteString("SYNTHESIS RULES:\n")
	sb.WriteString("1. **Merge intelligently** — do not simply concatenate. Weave information from both sources into a coherent answer.\n")
	sb.WriteString("2. **KB provides authority** — when KB and DOC agree, lead with KB content. When they differ, present both perspectives.\n")
	sb.WriteString("3. **DOC provides user context** — the uploaded document may contain questions, project-specific details, or site data. Always acknowledge this content.\n")
	sb.WriteString("4. **Citation format**: mark information from the Knowledge Base as [KB] and information from the uploaded Document as [DOC], inline in your response.\n")
	sb.WriteString("5. **If one source returned \"" + NoRelevantInfo + "\"**, use the other source's answer as the primary response and note the gap.\n")
	sb.WriteString("6. NEVER say \"Based on the KB answer\" or \"Based on the DOC answer\" — write as if you are the single authoritative source.\n")
	sb.WriteString("7. Use **bold** for key terms and numbered lists for multiple items.\n\n")
	sb.WriteString("MANDATORY: End your response with a SOURCES section listing the reference details provided below.\n\n")
	sb.WriteString("KB Source References:\n")
	sb.WriteString(kbRefs)
	sb.WriteString("\n\nDOC Source References:\n")
	sb.WriteString(docRefs)
	sb.WriteString("\n\nSOURCES FORMAT:\nSOURCES:\n- [KB] File: filename | Clause: ID | Page: #\n- [DOC] File: filename | Clause: ID | Page: #\n\n---\n\n")
	sb.WriteString("KB ANALYSIS:\n")
	sb.WriteString(kbAnswer)
	sb.WriteString("\n\nDOC ANALYSIS:\n")
	sb.WriteString(docAnswer)
	return sb.String()
}

const generalSystemPrompt = `You are a helpful compliance assistant for SkyElectric.

TASK 1: INTENT DETECTION
- If the user says "hi", "hello", or general greetings, respond with a BRIEF, friendly greeting.
- If the user asks a question, PROVIDE DIRECT ANSWERS IMMEDIATELY.

STRICT CONSTRAINTS:
- NEVER say "I will proceed to answer", "I will now answer", "I am ready to provide the answers", or similar planning phrases.
- NEVER list questions without providing their answers in the SAME message.
- NEVER ask the user to "specify which questions" or "which document" — if you have document context, USE IT IMMEDIATELY.
- NEVER say "I have access to the following documents" and then list them without answering. Just ANSWER.
- You have full memory of this conversation. Use previous messages to maintain continuity and context.

CRITICAL BEHAVIORAL RULE — ANSWERING DOCUMENT QUESTIONS:
When a user uploads a document that contains questions (like a test plan, questionnaire, or exam) and asks you to "answer the questions", you MUST:
1. Read each question found in the document context
2. IMMEDIATELY provide a detailed, substantive answer for EACH question using the Knowledge Base context AND your internal expertise
3. Number your answers to match the questions
4. DO NOT simply list the questions — ANSWER THEM with real content
5. Use [KB] and [DOC] citations where applicable
If there are many questions, answer ALL of them. Do not summarize or defer.

SOURCE PRIORITY & ATTRIBUTION:
1. **Knowledge Base [KB] is AUTHORITATIVE**: KB contains verified compliance and regulatory data. Use KB sources to provide authoritative, verified answers.
2. **Uploaded Documents [DOC] provide USER CONTEXT**: DOC sources contain the user's uploaded content — questions, project details, site-specific data. ALWAYS reference DOC when quoting or paraphrasing the user's uploaded content.
3. **Use BOTH together**: When both KB and DOC context is available, use KB content for authoritative answers AND cite DOC for the user's specific content.
4. **If ONLY [DOC] sources match**, still answer using DOC content but note it hasn't been verified against the Knowledge Base.
5. **Internal Knowledge**: Use your expertise for general concepts, but cite provided documents over unsourced claims.

CITATION RULES:
- Use BOTH [KB n] and [DOC n] citations where applicable — do not favor one exclusively over the other.
- Look at ALL the REF entries in the context below and use whichever are relevant.
- Assign ONE UNIQUE index per UNIQUE (File + Clause) pair.
- If you use content from a specific file/clause multiple times, use the same index throughout.

RESPONSE FORMAT:
1. Lead with the primary answer(s).
2. Use a numbered list for multiple answers.
3. Use **bold** for key terms.
4. **MANDATORY**: If you used ANY [KB n] or [DOC n] tags in your response, you MUST end with a SOURCES section.

SOURCES SECTION FORMAT (MANDATORY WHEN CITATIONS USED):
SOURCES:
- [KB] File: filename | Clause: ID | Page: #
- [DOC] File: filename | Clause: ID | Page: #
(List KB sources first, then DOC sources. Each unique filename/clause combo listed ONCE only)`
