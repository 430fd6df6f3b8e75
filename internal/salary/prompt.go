package salary

import (
	"fmt"
	"strings"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
)

const promptName = "salary_benchmark"

// maxContextChars bounds the knowledge-base context embedded in the prompt.
const maxContextChars = 6000

const systemPrompt = `You are a compensation analyst for the Indonesian job market.
Estimate a realistic MONTHLY gross salary band using only the reference material provided and well-known market knowledge.
Return ONLY one JSON object, no markdown, with exactly these keys:
{
  "currency": "ISO 4217 code",
  "min": number,
  "p25": number,
  "median": number,
  "p75": number,
  "max": number,
  "period": "monthly",
  "confidence": "low" | "medium" | "high",
  "summary": string,
  "factors": [string],
  "recommendations": [string]
}
Amounts are plain numbers without separators or currency symbols.
Use "low" confidence when the references do not cover the role or location.`

func buildPrompt(in Input, kbContext string) llm.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Job title: %s\n", in.JobTitle)
	fmt.Fprintf(&b, "Location: %s\n", in.Location)
	fmt.Fprintf(&b, "Experience: %d years\n", in.ExperienceYears)
	if in.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", in.Industry)
	}
	if in.Education != "" {
		fmt.Fprintf(&b, "Education: %s\n", in.Education)
	}
	if len(in.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(in.Skills, ", "))
	}
	fmt.Fprintf(&b, "Currency: %s\n\n", in.Currency)

	if strings.TrimSpace(kbContext) == "" {
		b.WriteString("Reference material: none available.\n")
	} else {
		b.WriteString("Reference material (cite by number in factors when relevant):\n")
		b.WriteString(kbContext)
		b.WriteString("\n")
	}
	return llm.Prompt{System: systemPrompt, User: b.String(), Name: promptName}
}
