package web

import (
	"html/template"
	"net/http"
	"time"
)

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>Sign in</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:420px;border:1px solid #ddd;border-radius:12px;padding:24px;}
input{font-size:1.2rem;letter-spacing:.3em;text-transform:none;width:100%;padding:8px;box-sizing:border-box}
button{margin-top:16px;padding:10px 16px;border-radius:8px;border:1px solid #888;cursor:pointer}
.small{font-size:12px;color:#666;margin-top:12px}
</style>
</head>
<body>
<div class="card">
  <h2>Enter your access code</h2>
  <form method="post" action="/login">
    <input name="code" maxlength="8" autocomplete="off" autofocus placeholder="XXXXXXXX" />
    <button type="submit">Sign in</button>
  </form>
  <div class="small">Codes are case-sensitive and can be used once.</div>
</div>
</body>
</html>`))

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>Dashboard</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:560px;border:1px solid #ddd;border-radius:12px;padding:24px;}
.small{font-size:12px;color:#666}
</style>
</head>
<body>
<div class="card">
  <h2>Access granted</h2>
  <p>User: {{.UserID}}</p>
  <p>Session valid until {{.ExpiresAt}}</p>
  <div class="small">This session ends at the deadline above regardless of activity.</div>
</div>
</body>
</html>`))

func renderLogin(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = loginPage.Execute(w, nil)
}

func renderDashboard(w http.ResponseWriter, userID string, expiresAt time.Time) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = dashboardPage.Execute(w, struct {
		UserID    string
		ExpiresAt string
	}{
		UserID:    userID,
		ExpiresAt: expiresAt.Format(time.RFC1123),
	})
}
