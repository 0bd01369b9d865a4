package constant

import "time"

const (
	REQUEST_SUCCESSFUL   = "Request successful"
	REQUEST_UNSUCCESSFUL = "Request unsuccessful"
)

const (
	QUERY_TIMEOUT_DURATION = 5 * time.Second
)

const (
	JWT_TYPE_ACCESS  = "access"
	JWT_TYPE_REFRESH = "refresh"
)

// Key of the authenticated user and its raw bearer token in gin.Context
const (
	CTX_USER_KEY  = "user"
	CTX_TOKEN_KEY = "token"
)
