package core

// Prompt text sent to the completion service.  Kept together so wording can
// be tuned without touching the flow code.

const (
	// SystemPrompt opens every transcript.
	SystemPrompt = "You are an expert health coach."

	// PersonaDirective leads the composed first-turn prompt.
	PersonaDirective = "You are a compassionate AI health coach specializing in root-cause solutions " +
		"using functional medicine and traditional Chinese medicine. " +
		"Provide thoughtful, personalized advice based on the user's data."

	// SummarySystemPrompt and SummaryInstruction drive the summarization of
	// long health documents.
	SummarySystemPrompt = "You are a helpful medical assistant."
	SummaryInstruction  = "Summarize the following health document in bullet points. " +
		"Focus on key findings, metrics, and possible health issues.\n\n"
)

// Sampling parameters per flow.
const (
	chatTemperature    = 0.6
	chatMaxTokens      = 800
	summaryTemperature = 0.5
	summaryMaxTokens   = 800
)
