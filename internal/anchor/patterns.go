package anchor

import "regexp"

// Family groups a trigger pattern by the threat family it belongs to, so
// a single compiled matcher set can report which defense layer caught a
// given read-class result.
type Family string

const (
	FamilyPromptInjection  Family = "prompt_injection"
	FamilyDelimiterSmuggle Family = "delimiter_smuggling"
	FamilyJailbreak        Family = "jailbreak"
)

type pattern struct {
	re     *regexp.Regexp
	family Family
	detail string
}

// triggerPatterns is compiled once at package init and shared, read-only,
// across every turn — matching the "compiled once at boot" requirement.
// Organized by threat family: override phrases and identity-override
// phrasing (prompt injection), delimiter/role smuggling, and known
// jailbreak templates.
var triggerPatterns = []pattern{
	// Prompt injection: instruction override and identity override.
	{regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`), FamilyPromptInjection, "override: ignore previous instructions"},
	{regexp.MustCompile(`(?i)ignore\s+(all\s+)?above\s+instructions`), FamilyPromptInjection, "override: ignore above instructions"},
	{regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)\s+(instructions|rules|guidelines)`), FamilyPromptInjection, "override: disregard instructions"},
	{regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|above)\s+(instructions|context)`), FamilyPromptInjection, "override: forget instructions"},
	{regexp.MustCompile(`(?i)you\s+are\s+now\s+`), FamilyPromptInjection, "identity override: you are now"},
	{regexp.MustCompile(`(?i)from\s+now\s+on\s+you\s+(are|will|must|should)`), FamilyPromptInjection, "identity override: from now on"},
	{regexp.MustCompile(`(?i)your\s+new\s+(role|identity|persona|instructions)\s+(is|are)`), FamilyPromptInjection, "identity override: new role"},
	{regexp.MustCompile(`(?i)override\s+(system|safety|security)\s+(prompt|instructions|rules|policy)`), FamilyPromptInjection, "explicit override attempt"},
	{regexp.MustCompile(`(?i)bypass\s+(the\s+)?(safety|security|content)\s+(filter|check|policy|rules)`), FamilyPromptInjection, "explicit bypass attempt"},
	{regexp.MustCompile(`(?i)do\s+not\s+follow\s+(your|the|any)\s+(rules|guidelines|instructions|safety)`), FamilyPromptInjection, "instruction negation"},
	{regexp.MustCompile(`(?i)reveal\s+(your|the)\s+(system|initial|original|hidden)\s+(prompt|instructions|message)`), FamilyPromptInjection, "system prompt extraction"},
	{regexp.MustCompile(`(?i)what\s+(are|is|were)\s+your\s+(system|initial|original|hidden)\s+(prompt|instructions|rules)`), FamilyPromptInjection, "system prompt extraction"},

	// Embedded tool-call markers: a read-class result that contains the
	// runtime's own dispatch grammar is attempting to forge a tool call.
	{regexp.MustCompile(`(?i)::TOOL\s+\w+\(`), FamilyPromptInjection, "embedded ::TOOL marker"},

	// Delimiter / role smuggling.
	{regexp.MustCompile(`(?i)\[SYSTEM\]`), FamilyDelimiterSmuggle, "delimiter injection: [SYSTEM] tag"},
	{regexp.MustCompile(`(?i)<\|im_start\|>\s*system`), FamilyDelimiterSmuggle, "delimiter injection: ChatML system tag"},
	{regexp.MustCompile(`(?i)###\s*(SYSTEM|INSTRUCTION|NEW INSTRUCTION)`), FamilyDelimiterSmuggle, "delimiter injection: markdown system header"},
	{regexp.MustCompile(`(?i)BEGININSTRUCTION`), FamilyDelimiterSmuggle, "delimiter injection: BEGININSTRUCTION"},
	{regexp.MustCompile(`(?i)---\s*(system|instruction)\s*(prompt|message)?`), FamilyDelimiterSmuggle, "delimiter injection: dashed system section"},

	// Jailbreak templates.
	{regexp.MustCompile(`(?i)\bDAN\b.*\bdo\s+anything\s+now\b`), FamilyJailbreak, "DAN jailbreak: Do Anything Now"},
	{regexp.MustCompile(`(?i)you\s+are\s+DAN`), FamilyJailbreak, "DAN jailbreak: you are DAN"},
	{regexp.MustCompile(`(?i)DAN\s+mode\s+(enabled|activated|on)`), FamilyJailbreak, "DAN jailbreak: DAN mode enabled"},
	{regexp.MustCompile(`(?i)enable\s+DAN\s+mode`), FamilyJailbreak, "DAN jailbreak: enable DAN mode"},
	{regexp.MustCompile(`(?i)enter\s+(developer|debug|maintenance|god|sudo)\s+mode`), FamilyJailbreak, "mode jailbreak: developer/debug mode"},
	{regexp.MustCompile(`(?i)(developer|debug|maintenance|god|sudo)\s+mode\s+(enabled|activated|on)`), FamilyJailbreak, "mode jailbreak: mode enabled"},
	{regexp.MustCompile(`(?i)unlock\s+(all\s+)?(restrictions|capabilities|limitations)`), FamilyJailbreak, "jailbreak: unlock restrictions"},
	{regexp.MustCompile(`(?i)roleplay\s+as\s+(an?\s+)?(evil|unfiltered|unrestricted|uncensored)`), FamilyJailbreak, "roleplay jailbreak: evil/unfiltered character"},
	{regexp.MustCompile(`(?i)you\s+have\s+no\s+(restrictions|rules|limitations|guidelines|filters)`), FamilyJailbreak, "jailbreak: no restrictions claim"},
	{regexp.MustCompile(`(?i)without\s+(any\s+)?(ethical|moral|safety)\s+(guidelines|restrictions|constraints|considerations)`), FamilyJailbreak, "jailbreak: without ethical guidelines"},
	{regexp.MustCompile(`(?i)\bjailbreak\b`), FamilyJailbreak, "explicit jailbreak keyword"},
	{regexp.MustCompile(`(?i)\buncensored\s+mode\b`), FamilyJailbreak, "jailbreak: uncensored mode"},
}
