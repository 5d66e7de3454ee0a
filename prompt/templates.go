package prompt

// Template names used across the engine. Every completion-service prompt is
// registered here so the wording lives in one place.
const (
	TmplLanguageIdentify     = "language_identify"
	TmplLocationExtract      = "location_extract"
	TmplGenderExtract        = "gender_extract"
	TmplNationalityExtract   = "nationality_extract"
	TmplSectorExtract        = "sector_extract"
	TmplTranslateToEnglish   = "translate_to_english"
	TmplTranslateFromEnglish = "translate_from_english"
	TmplCaseClassify         = "case_classify"
	TmplNavigationJudge      = "navigation_judge"
	TmplNodeQuestion         = "node_question"
	TmplNodeAcknowledge      = "node_acknowledge"
	TmplNodeTransition       = "node_transition"
	TmplFactoryExtract       = "factory_extract"
	TmplIncidentSummary      = "incident_summary"
	TmplPolicyCorrelate      = "policy_correlate"
	TmplQueryRefine          = "query_refine"
	TmplContextAnswer        = "context_answer"
)

var defaultTemplates = map[string]string{
	TmplLanguageIdentify: `You are a language identification agent. Based on the following user message, identify the language being used.
Return only the language name in English (e.g., "English", "Spanish", "Chinese", etc.). If no language can be determined, return "None".
Do not include any additional text or explanations.

User message: "{{.Message}}"`,

	TmplLocationExtract: `You are a location extraction agent. Based on the following user message, extract any location information mentioned (country, city, region, etc.).
Return only the location name. If no location is mentioned, return "None".
Do not include any additional text or explanations.

User message: "{{.Message}}"`,

	TmplGenderExtract: `You are a gender extraction agent. Based on the following user message, extract any gender information mentioned.
Return only the gender (e.g., "Male", "Female", "Non-binary", etc.). If no gender is mentioned, return "None".
Do not include any additional text or explanations.

User message: "{{.Message}}"`,

	TmplNationalityExtract: `You are a nationality extraction agent. Based on the following user message, extract any nationality information mentioned.
Return only the nationality name (e.g., "Indonesian", "Thai", "Vietnamese", etc.). If no nationality is mentioned, return "None".
Do not include any additional text or explanations.

User message: "{{.Message}}"`,

	TmplSectorExtract: `You are an industrial sector extraction agent. Based on the following user message, extract any industrial sector or factory type information mentioned.
Return only the industrial sector name (e.g., "Electronics", "Textiles", "Food Processing", "Automotive", etc.). If no industrial sector is mentioned, return "None".
Do not include any additional text or explanations.

User message: "{{.Message}}"`,

	TmplTranslateToEnglish: `Translate the following text to English: '{{.Text}}'. Keep the same punctuation as the original text. Return only the translated text, without any additional words, punctuation, or explanation.`,

	TmplTranslateFromEnglish: `Please translate the following English text to {{.Language}} as a fluent native speaker: '{{.Text}}'. Ensure the translation captures the correct tone, meaning, and is idiomatically accurate. Return only the translated text without any additional information, punctuation, or explanation. If the text provided is already in the target language, return it as it is without any further changes.`,

	TmplCaseClassify: `You are a legal assistant. Based on the following user information, identify the type of legal case they are dealing with:

- Legal Rights Inquiry (for general legal questions, rights information, labor law questions, legal advice)
- Lender Harassment
- Employer Exploitation
- Excessive Interest Rate
- Recruitment Agency Harassment

Be concise and return only the case type as named above.

Problem: {{.Problem}}`,

	TmplNavigationJudge: `You are a conversation state evaluator helping a legal assistant chatbot.

Your task is to determine whether the user has provided sufficient information to complete the current conversation step and proceed to the next one.

Current step requirements:
{{.Requirement}}

Most recent bot message:
{{.BotMessage}}

Most recent user reply:
{{.UserMessage}}

Evaluation criteria:
- Has the user provided relevant information that addresses the current step's requirements?
- Is the information sufficient to move forward, even if not complete?
- Does the user's response show they understand what was asked?

If the user's reply directly addresses the current step's requirements with relevant information, return exactly 'Yes'.
If the user's reply is off-topic, unclear, or doesn't address the current step, return exactly 'No'.

Only return 'Yes' or 'No'. Do not include explanations or anything else.`,

	TmplNodeQuestion: `You are a helpful legal assistant chatbot. Based on the current conversation step, ask the user for the required information.

Current step requirements: {{.Requirement}}

Chat history (to avoid repeating questions): {{.History}}

Generate a clear, concise question to gather the information needed for this step. Be polite and professional.
Don't repeat questions that have already been asked or information that has already been provided.`,

	TmplNodeAcknowledge: `You are a helpful legal assistant chatbot. The user has provided information related to the current conversation step.

Current step requirements: {{.Requirement}}

Chat history: {{.History}}

User's message: {{.UserMessage}}

Acknowledge the user's input appropriately and professionally. If the information is helpful, thank them. If you need clarification, ask politely.
Don't repeat what the user said. Keep your response concise and move the conversation forward naturally.`,

	TmplNodeTransition: `You are a helpful legal assistant chatbot. The user has provided information for the current step and you need to acknowledge it and smoothly transition to ask for the next required information.

Current step that was completed: {{.Completed}}
Next step requirements: {{.Next}}

Chat history: {{.History}}
User's latest message: {{.UserMessage}}

Create a single, cohesive response that:
1. Acknowledges and thanks the user for the information they provided
2. Smoothly transitions to ask for the next required information
3. Maintains a professional and empathetic tone
4. Flows naturally as one conversation turn

Make the transition feel natural and connected, not like two separate responses.`,

	TmplFactoryExtract: `Based on the provided history, extract the factory name mentioned. Only return the factory name, nothing else.

History: {{.History}}`,

	TmplIncidentSummary: `Extract a summary that includes the incidents that the user mentioned based on the given chat history.

Make sure that it includes the key points of the violation incidents without repetition.

Chat History: {{.Transcript}}`,

	TmplPolicyCorrelate: `You are a legal analyst assessing corporate compliance with labor policies.

You will be given:
1. A worker's incident report.
2. The company's official policy text with categories in brackets.

Your task is to:
- Summarize the complaint in one sentence.
- Extract and list only the specific incidents reported by the worker as bullet points.
- Identify policy violations ONLY when there is a direct and clear connection between the reported incidents and the policy categories.
- For each policy violation, list all related incidents and provide one comprehensive violation description.

CRITICAL RULES:
1. Do NOT create violations for policy categories that are not directly related to the reported incidents.
2. Do NOT make assumptions or inferences beyond what is explicitly stated in the incident report.
3. Do NOT create separate violations for incidents that fall under the same policy category. Group them together.
4. Only identify violations where the incidents clearly and directly violate the specific policy content.

Respond strictly in the following JSON format:

{
  "complaint_summary": "One sentence summary of the worker's complaint.",
  "incidents": [
    "List key details of the incident as bullet points"
  ],
  "policy_violations": [
    {
      "policy_category": "The policy category from brackets (e.g., 'Recruitment Fees', 'Document Confiscation', 'Wages and Overtime')",
      "related_incidents": [
        "List of incidents from the incidents list that relate to this policy violation"
      ],
      "violation_description": "Comprehensive description of how the related incidents collectively violate this policy"
    }
  ]
}

Do not include any commentary or explanations outside the JSON structure.

Incident Report:
{{.Incident}}

Company Policy Documents:
{{.Policies}}`,

	TmplQueryRefine: `You are a query refinement specialist. The user has asked multiple related questions in a conversation about legal rights and labor law. Your task is to combine and refine these queries into one comprehensive search query that captures the complete intent and context.

User's queries in chronological order:
{{.Queries}}

Create a single, comprehensive search query that:
1. Combines the main topics and concepts from all queries
2. Maintains the specific legal context and details mentioned
3. Removes redundancy while preserving important details
4. Is optimized for retrieving relevant legal documents and information
5. Focuses on the core legal question or issue being asked

Return only the refined comprehensive query, nothing else.`,

	TmplContextAnswer: `Context: {{.Context}}
Chat History: {{.History}}

The input query is: "{{.Query}}".

Based on the user's query, only apply the guidelines that are relevant to their specific situation:

FINANCIAL/DEBT GUIDELINES (only use if the query is about debt, loans, financial problems, or lender issues):
- Encourage open communication and negotiation with lenders. Suggest steps such as:
    1. Requesting an extension of payment deadlines.
    2. Asking for temporary reduced payment amounts.
    3. Exploring loan restructuring options.
- Recommend seeking professional financial counseling from NGOs or social welfare organizations that specialize in supporting domestic helpers.

EMPLOYMENT/LEGAL GUIDELINES (only use if the query is about employment rights, labor laws, or workplace issues):
- Prioritize the stability of the client's employment and their compliance with local employment and immigration laws.
- Ensure the response is supportive, compassionate, and emphasizes the client's well-being while maintaining their legal and contractual obligations.

UNIVERSAL RESTRICTIONS (always apply):
When responding, ensure that you do not:
- Advise keeping secrets from employers, especially concerning money lending or personal financial matters.
- Provide guidance that contradicts transparency and ethical practices in a workplace environment.
- Suggest extra work or activities that could jeopardize the client's employment status.
- Recommend any illegal or unauthorized employment as a way to pay off debts or loans.
- Include any bold formatting in the text provided.

UNIVERSAL GUIDANCE (always apply):
- Ask for clarification if needed.
- Provide a complete, concise, and easy-to-understand response.
- Respond in a compassionate and human-like format without repeating yourself.
- Avoid mentioning anything about the context to the user.`,
}

// DefaultManager returns a manager preloaded with every engine template.
func DefaultManager() *Manager {
	m := NewManager()
	for name, content := range defaultTemplates {
		if err := m.RegisterString(name, content); err != nil {
			// Templates are compile-time constants; a parse failure is a
			// programming error.
			panic(err)
		}
	}
	return m
}
