package service

import (
	"fmt"
	"strings"

	"filing-advisor-go/internal/model"
)

const (
	chatSystemTemplate = "You are a helpful financial assistant for Goldman Sachs advisors. " +
		"Use the following SEC 10-K context to answer the user's question. " +
		"If the answer is not in the context, say you don't know.\n\nContext:\n%s"

	// NoResultsAnswer 是检索不到任何分块时的固定回答。
	NoResultsAnswer = "I could not find any relevant information in the uploaded 10-K documents for this company."

	generationUserTemplate  = "Please generate the %s based on the following SEC filings:\n\n%s"
	generationAuditTemplate = "System triggered specialized generation: %s"
	missingSectionsTemplate = "Required 10-K sections (%s) not found for this company."
	llmErrorTemplate        = "Error calling language model: %v"
)

// generationTemplate 描述一种生成模式需要的章节和系统指令。
type generationTemplate struct {
	Sections    []string
	Instruction string
}

var generationTemplates = map[string]generationTemplate{
	model.ModeSummary: {
		Sections: []string{model.ItemBusiness, model.ItemMDA},
		Instruction: "You are an expert Goldman Sachs financial analyst. Summarize the company's core business " +
			"and financial discussion based on the provided 10-K sections. Keep it professional, structured, and concise.",
	},
	model.ModeRiskNote: {
		Sections: []string{model.ItemRisk},
		Instruction: "You are a risk management expert. Extract and summarize the key risk factors from the " +
			"provided 10-K section. Format the output using clear bullet points.",
	},
	model.ModeEmail: {
		Sections: []string{model.ItemBusiness, model.ItemRisk, model.ItemMDA},
		Instruction: "You are a financial advisor. Draft a professional, client-facing email summarizing this " +
			"company's business profile, recent performance, and key risks based on the provided 10-K sections. " +
			"Include a placeholder for the client's name.",
	},
}

// IsGenerationMode 判断 mode 是否是支持的生成模式。
func IsGenerationMode(mode string) bool {
	_, ok := generationTemplates[mode]
	return ok
}

func buildChatContext(chunks []model.RetrievedChunk) string {
	var b strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&b, "---\nSource: %s\nContent: %s\n", c.ItemName, c.ChunkText)
	}
	return b.String()
}

func buildChatSystem(contextText string) string {
	return fmt.Sprintf(chatSystemTemplate, contextText)
}

func buildGenerationContext(docs []model.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = fmt.Sprintf("--- %s ---\n%s", d.ItemName, d.RawText)
	}
	return strings.Join(parts, "\n\n")
}
