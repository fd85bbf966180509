package routes

import (
	"fmt"
	"net/http"
)

// PrivacyPolicyHandler serves the Privacy Policy content
func PrivacyPolicyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	// Serve Privacy Policy content as HTML
	html := `
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8">
		<meta name="viewport" content="width=device-width, initial-scale=1.0">
		<title>Privacy Policy</title>
	</head>
	<body>
		<h1>Privacy Policy</h1>
		<p>Welcome to Satex. This Privacy Policy outlines how we collect, use, and protect your data.</p>
		<p>Chat messages and feed posts are visible to other signed-in players. Presence is best effort and may lag.</p>
		<p>Contact us at <a href="mailto:support@satex.gg">support@satex.gg</a> for questions.</p>
	</body>
	</html>
	`
	fmt.Fprint(w, html)
}
