package models

const (
	// MsgUnavailable is returned verbatim whenever the knowledge index is
	// absent (empty corpus or failed build). User-facing, do not reword.
	MsgUnavailable = "Sorry, the knowledge system is currently unavailable."

	// MsgProcessingError is returned verbatim whenever retrieval or
	// completion fails during a single request. User-facing, do not reword.
	MsgProcessingError = "Sorry, an error occurred while processing your request."

	// MsgEmptyMessage is the webhook reply for a message with no body.
	MsgEmptyMessage = "Sorry, I didn't receive any message. Could you try again?"

	// MsgOnline is the health-check body.
	MsgOnline = "Pharmacy chatbot is online and waiting for messages!"
)

// SystemPromptTemplate carries the assistant persona and the grounding
// policy, with a slot for the retrieved context. The instruction to decline
// and redirect the user to the pharmacy when the context does not answer the
// question is a best-effort contract with the LLM; the pipeline cannot
// enforce it structurally.
const SystemPromptTemplate = `You are a helpful and friendly chatbot assistant for a compounding pharmacy. Your goal is to provide accurate and useful information about the pharmacy's services, products, opening hours, location and how to send prescriptions. Keep answers concise and to the point. Use the following context information to answer the user's question. If the answer is not in the provided context, say that you do not have information about it and ask the user to contact the pharmacy directly.

Context: %s`
