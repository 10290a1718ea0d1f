package httpdto

type ContactsResponse struct {
	Contacts []string `json:"contacts"`
}

type PendingRequestsResponse struct {
	ContactRequests []string `json:"contactRequests"`
}

type SentRequestsResponse struct {
	SentRequests []string `json:"sentRequests"`
}

type AcceptResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	Created        bool   `json:"created"`
}
