package mcp

import "github.com/mark3labs/mcp-go/mcp"

// processQueryTool defines the process_query MCP tool.
var processQueryTool = mcp.NewTool("process_query",
	mcp.WithDescription("Send one utterance to the infrastructure assistant. Handles greetings, infrastructure creation requests, requirement answers, code generation and knowledge questions within a session."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("The user's utterance"),
	),
	mcp.WithString("session_id",
		mcp.Description("Conversation session id (a new one is generated when empty)"),
	),
	mcp.WithString("user_id",
		mcp.Description("Optional user id for preferences and profile"),
	),
)

// analyzeInfrastructureTool defines the analyze_infrastructure MCP tool.
var analyzeInfrastructureTool = mcp.NewTool("analyze_infrastructure",
	mcp.WithDescription("Analyze a free-form infrastructure request into a plan (pattern, environment, components, cost, security) without starting a conversation."),
	mcp.WithString("request",
		mcp.Required(),
		mcp.Description("Description of the infrastructure to build"),
	),
	mcp.WithString("environment",
		mcp.Description("Preferred environment when the request names none"),
		mcp.Enum("aws", "azure", "gcp", "on-premise", "hybrid"),
	),
	mcp.WithString("format",
		mcp.Description("Output format (default summary)"),
		mcp.Enum("summary", "json", "terraform"),
	),
)

// getRequirementsStatusTool defines the get_requirements_status MCP tool.
var getRequirementsStatusTool = mcp.NewTool("get_requirements_status",
	mcp.WithDescription("Get the requirements collection state of a session: current question, answers, completion percentage and validation."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Conversation session id"),
	),
)

// answerRequirementTool defines the answer_requirement MCP tool.
var answerRequirementTool = mcp.NewTool("answer_requirement",
	mcp.WithDescription("Answer a requirements question in a session. Answers the current question unless question_number is given."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Conversation session id"),
	),
	mcp.WithString("answer",
		mcp.Required(),
		mcp.Description("The answer text"),
	),
	mcp.WithNumber("question_number",
		mcp.Description("1-based question number (optional)"),
	),
)

// getConversationContextTool defines the get_conversation_context MCP tool.
var getConversationContextTool = mcp.NewTool("get_conversation_context",
	mcp.WithDescription("Get the stored history, current topic and profile of a session."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Conversation session id"),
	),
)

// setPreferenceTool defines the set_preference MCP tool.
var setPreferenceTool = mcp.NewTool("set_preference",
	mcp.WithDescription("Store a user preference such as preferred_environment, expertise_level or interaction_style."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("User id"),
	),
	mcp.WithString("key",
		mcp.Required(),
		mcp.Description("Preference key"),
	),
	mcp.WithString("value",
		mcp.Required(),
		mcp.Description("Preference value"),
	),
)

// recordFeedbackTool defines the record_feedback MCP tool.
var recordFeedbackTool = mcp.NewTool("record_feedback",
	mcp.WithDescription("Record a satisfaction score between 0 and 1 for the latest answer in a session."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Conversation session id"),
	),
	mcp.WithNumber("score",
		mcp.Required(),
		mcp.Description("Satisfaction score from 0 to 1"),
	),
)
