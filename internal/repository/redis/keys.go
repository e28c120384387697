package redis

// Key shapes are a compatibility contract with already-stored data and must
// not change.
func credentialKey(username string) string { return "chat:password:" + username }
func tokenKey(token string) string         { return "chat:token:" + token }
func lastTokenKey(username string) string  { return "chat:token:last:" + username }

// userTokensKey indexes a user's active tokens for enumeration and bulk
// revocation. Auxiliary: not part of the original namespace, additive only.
func userTokensKey(username string) string { return "chat:token:user:" + username }

func counterKey(scope, class, identifier string) string {
	return "rl:" + scope + ":" + class + ":" + identifier
}

func blockKey(scope, class, identifier string) string {
	return "rl:block:" + scope + ":" + class + ":" + identifier
}

func roomKey(id string) string { return "room:" + id }

func presenceKey(roomID, username string) string {
	return "presence:" + roomID + ":" + username
}

func presencePattern(roomID string) string { return "presence:" + roomID + ":*" }

func listenKey(id string) string { return "listen:session:" + id }
