package contracts

import (
	"fmt"
	"strings"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
)

const promptName = "contract_analysis"

// maxContractChars bounds the contract text sent to the model.
const maxContractChars = 24000

const systemPrompt = `You review employment contracts for workers in Indonesia.
Judge clauses against common practice and Indonesian labour law (UU Ketenagakerjaan, PKWT/PKWTT rules).
Return ONLY one JSON object, no markdown, with these keys:
{
  "summary": string,
  "contractType": "PKWT" | "PKWTT" | "freelance" | "internship" | "other",
  "parties": [string],
  "keyTerms": {
    "salary": string,
    "duration": string,
    "probation": string,
    "noticePeriod": string,
    "workingHours": string,
    "benefits": [string]
  },
  "risks": [{"clause": string, "severity": "low" | "medium" | "high", "explanation": string, "recommendation": string}],
  "redFlags": [string],
  "overallRisk": "low" | "medium" | "high",
  "fairnessScore": integer 0-100
}
Use an empty string for terms the contract does not state. Quote clauses briefly.`

func buildPrompt(contractText, notes string) llm.Prompt {
	var b strings.Builder
	if notes = strings.TrimSpace(notes); notes != "" {
		fmt.Fprintf(&b, "Reviewer notes from the worker: %s\n\n", notes)
	}
	b.WriteString("Contract text:\n")
	b.WriteString(clip(contractText, maxContractChars))
	return llm.Prompt{System: systemPrompt, User: b.String(), Name: promptName}
}

// clip cuts s to at most n bytes on a rune boundary.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
