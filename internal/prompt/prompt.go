// Package prompt assembles the LLM prompt for a merchant query.
package prompt

import (
	"fmt"
	"strings"

	"github.com/nadzzz/bizassist/internal/business"
)

// Build combines the query (original and translated), the business summary and
// the answer/follow-up instructions into a single prompt.
func Build(translatedQuery string, record *business.Record, originalQuery, language string) string {
	s := record.Summarize()

	var sb strings.Builder
	sb.WriteString("\nYou are a smart, friendly sales consultant for a small business owner (like a restaurant).\n")
	sb.WriteString("Your job is to answer questions, provide insights, and help the merchant improve their sales.\n\n")

	fmt.Fprintf(&sb, "Language context: The user is speaking in %s\n", language)
	fmt.Fprintf(&sb, "Original Query: %s\n", originalQuery)
	fmt.Fprintf(&sb, "Translated Query: %s\n\n", translatedQuery)

	sb.WriteString("Business Data:\n")
	fmt.Fprintf(&sb, "- Last month's sales: %s\n", rupees(s.LastPeriodSales))
	fmt.Fprintf(&sb, "- This month so far: %s (last %d days)\n", rupees(s.RecentSales), business.RecentWindow)
	fmt.Fprintf(&sb, "- Average order value: %s\n\n", rupees(s.AverageOrderValue))

	sb.WriteString("Answer in clear, friendly language. Keep your response concise and helpful.\n")
	sb.WriteString("Focus on the specific question asked and provide actionable insights.\n\n")
	sb.WriteString("Also, suggest 2–3 intelligent follow-up questions the merchant might want to ask next based on this data.\n")
	sb.WriteString("Output the follow-ups in a JSON array format like: [\"Prompt 1\", \"Prompt 2\", \"Prompt 3\"]\n")
	return sb.String()
}

func rupees(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}
