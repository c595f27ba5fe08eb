package enrich

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const summaryPrompt = `You are a legal expert specializing in financial regulations.
Summarize the following text from a Monetary Authority of Singapore (MAS) notice.
Focus on the key requirements, obligations, and definitions.
The summary should be concise and clear.

TEXT: %q`

const questionPrompt = `You are helping build a retrieval system for MAS notices.
Write ONE hypothetical question that a compliance officer might ask which the
following text answers. Respond with only the question, no preamble.

TEXT: %q`

const rerankPrompt = `Score the relevance of the following document to the user's query.
The score should be an integer from 1 (not relevant) to 10 (highly relevant).
Return ONLY the integer score.

User Query: %q
---
Document (Source: %s, Type: %s):
%q`

// BuildSummaryPrompt asks for a concise summary of one node's text.
func BuildSummaryPrompt(text string) string {
	return fmt.Sprintf(summaryPrompt, text)
}

// BuildQuestionPrompt asks for a hypothetical question the node answers.
func BuildQuestionPrompt(text string) string {
	return fmt.Sprintf(questionPrompt, text)
}

// BuildRerankPrompt asks for a 1-10 relevance score of a document against
// the user's query.
func BuildRerankPrompt(query, noticeID, nodeType, text string) string {
	return fmt.Sprintf(rerankPrompt, query, noticeID, nodeType, text)
}

// BuildSynthesisPrompt assembles the final answer prompt: the question plus
// labeled context sections the model must cite.
func BuildSynthesisPrompt(query string, sections []ContextSection) string {
	var sb strings.Builder
	sb.WriteString(`You are an expert on MAS regulations. Answer the user's question based ONLY on the provided context sections.
For each piece of information you use, you MUST cite the specific source notice and paragraph (e.g., "According to MAS Notice 758, paragraph 3(a), ...").
If the answer is not in the context, state that clearly.

`)
	sb.WriteString(fmt.Sprintf("User Question: %q\n\nContext Sections:\n", query))
	for i, s := range sections {
		sb.WriteString(fmt.Sprintf("--- Context %d (Source: %s, Type: %s, Node: %s) ---\n", i+1, s.NoticeID, s.NodeType, s.NodeID))
		sb.WriteString(s.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// ContextSection is one retrieved node offered to the synthesis prompt.
type ContextSection struct {
	NodeID   string
	NoticeID string
	NodeType string
	Text     string
}

var scoreRe = regexp.MustCompile(`\d+`)

// ParseScore pulls the integer score out of a rerank response. Unscorable
// responses yield 0, which sorts the document to the bottom.
func ParseScore(response string) int {
	m := scoreRe.FindString(response)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 0 {
		return 0
	}
	if n > 10 {
		return 10
	}
	return n
}
