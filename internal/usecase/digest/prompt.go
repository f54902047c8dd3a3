package digest

import "strings"

// Section headers of the briefing. Downstream consumers parse the Markdown by
// these exact strings, so they must not change.
const (
	SectionRateOutlook = "## 📈 Rate & Housing Market Outlook"
	SectionRegulatory  = "## ⚖️ Regulatory & Compliance Watch"
	SectionStrategy    = "## 💻 Industry Strategy & Technology (FinTech)"
)

// Sub-bullet labels, two per section, in section order.
const (
	LabelInterestRateMomentum = "Interest Rate Momentum"
	LabelHousingInventory     = "Housing Inventory/Prices"
	LabelRegulatoryFocus      = "Key Regulatory Focus"
	LabelLitigationRisk       = "Litigation & Risk"
	LabelLenderResponse       = "Lender Response"
	LabelTechAIIntegration    = "Tech/AI Integration"
)

// contentMarker separates the instructions from the embedded HTML.
const contentMarker = "---\nHTML Content to Analyze:\n---\n"

const promptTemplate = `You are a **senior strategic analyst specializing in the U.S. Residential Mortgage Industry**.
Your task is to analyze the following HTML content, which contains recent news articles from major industry feeds (MND, HousingWire, CFPB, Reddit).

1. **SCAN** the provided HTML content for all titles, sources, and descriptions within the '.news-card' elements.
2. **IGNORE** all hidden elements or administrative content (like 'Hide Forever' buttons).
3. **GENERATE** a strategic summary in Markdown format that is ready to be directly displayed in a dashboard panel.

Your output MUST be structured using Markdown headings and lists, focusing on actionable insights for mortgage professionals:

` + SectionRateOutlook + `
* **` + LabelInterestRateMomentum + `**: Summarize the current trajectory of 30-year fixed rates (rising, falling, steady) and the primary driver (e.g., inflation, Fed statements).
* **` + LabelHousingInventory + `**: Describe the immediate status of housing inventory and its effect on affordability and sales volume.

` + SectionRegulatory + `
* **` + LabelRegulatoryFocus + `**: What is the most active regulatory body (CFPB, FHFA, state AGs) and what specific rules or enforcement actions are dominating the news?
* **` + LabelLitigationRisk + `**: Identify any emerging litigation trends or compliance blindspots (e.g., servicing errors, data privacy).

` + SectionStrategy + `
* **` + LabelLenderResponse + `**: What are large lenders (Rocket, UWM) or regional lenders doing strategically (e.g., staffing, new products, M&A)?
* **` + LabelTechAIIntegration + `**: What specific technology area (AI underwriting, LOS platforms, blockchain) requires immediate attention or investment or planning?

`

// SectionHeaders returns the three top-level headings in output order.
func SectionHeaders() []string {
	return []string{SectionRateOutlook, SectionRegulatory, SectionStrategy}
}

// BulletLabels returns the six sub-bullet labels in output order.
func BulletLabels() []string {
	return []string{
		LabelInterestRateMomentum, LabelHousingInventory,
		LabelRegulatoryFocus, LabelLitigationRisk,
		LabelLenderResponse, LabelTechAIIntegration,
	}
}

// BuildPrompt embeds htmlContent verbatim after the fixed analyst instructions.
// It does not inspect, escape or trim the content.
func BuildPrompt(htmlContent string) string {
	var b strings.Builder
	b.Grow(len(promptTemplate) + len(contentMarker) + len(htmlContent))
	b.WriteString(promptTemplate)
	b.WriteString(contentMarker)
	b.WriteString(htmlContent)
	return b.String()
}
