package auth

type SessionKey string

var (
	SessionKeyClientID   SessionKey = "client_id"
	SessionKeyCredential SessionKey = "credential"
	SessionKeySignedInAt SessionKey = "signed_in_at"
)
