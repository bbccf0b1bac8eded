package view

import (
	"bytes"
	"html/template"
)

// RedirectPageData provides the dynamic fields required by the countdown template.
type RedirectPageData struct {
	Title            string
	Username         string
	Platform         string
	PlatformIcon     string
	LinkTitle        string
	TargetURL        string
	ContinueURL      string
	CountdownSeconds int
}

var redirectPageTmpl = template.Must(template.New("redirect_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{if .Title}}{{.Title}}{{else}}Redirecting...{{end}}</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--accent: #7dd3fc;
			--accent-strong: #38bdf8;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 32px;
			width: min(520px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
			backdrop-filter: blur(18px);
			text-align: center;
		}
		.icon {
			font-size: 2.6rem;
			margin-bottom: 8px;
		}
		h1 {
			font-size: 1.5rem;
			margin-bottom: 6px;
		}
		p {
			color: var(--muted);
			margin-top: 0;
		}
		.destination {
			margin: 24px 0;
			padding: 18px;
			border-radius: 14px;
			background: rgba(125, 211, 252, 0.07);
			border: 1px solid rgba(125, 211, 252, 0.25);
			word-break: break-all;
		}
		.destination-label {
			font-size: 0.82rem;
			text-transform: uppercase;
			letter-spacing: 0.08em;
			color: var(--muted);
			margin-bottom: 8px;
		}
		.actions {
			display: flex;
			align-items: center;
			justify-content: center;
			gap: 12px;
			margin-top: 24px;
			flex-wrap: wrap;
		}
		a.button {
			display: inline-flex;
			align-items: center;
			justify-content: center;
			padding: 0 28px;
			height: 48px;
			border-radius: 999px;
			background: linear-gradient(120deg, var(--accent), var(--accent-strong));
			color: #050708;
			font-weight: 600;
			text-decoration: none;
			transition: transform 0.15s ease, opacity 0.15s ease;
		}
		a.button:hover {
			transform: translateY(-1px);
			opacity: 0.92;
		}
		.timer {
			font-size: 0.95rem;
			color: var(--muted);
		}
	</style>
</head>
<body>
	<div class="card">
		{{if .PlatformIcon}}<div class="icon">{{.PlatformIcon}}</div>{{end}}
		<h1>{{if .LinkTitle}}{{.LinkTitle}}{{else}}{{.Platform}}{{end}}</h1>
		<p>@{{.Username}} on {{.Platform}}</p>

		<div class="destination">
			<div class="destination-label">Taking you to</div>
			<div>{{.TargetURL}}</div>
		</div>

		<div class="timer">
			Redirecting in <span id="countdown">{{if gt .CountdownSeconds 0}}{{.CountdownSeconds}}{{else}}3{{end}}</span>s…
		</div>

		<div class="actions">
			<a id="cta" class="button" href="{{.ContinueURL}}">Visit Now</a>
		</div>
	</div>

	<script>
		(function() {
			const startSeconds = {{if gt .CountdownSeconds 0}}{{.CountdownSeconds}}{{else}}3{{end}};
			let remaining = startSeconds;
			const countdown = document.getElementById("countdown");
			const target = {{.ContinueURL | js}};

			const tick = () => {
				remaining -= 1;
				if (remaining <= 0) {
					window.location.assign(target);
					return;
				}
				if (countdown) {
					countdown.textContent = remaining.toString();
				}
				setTimeout(tick, 1000);
			};
			setTimeout(tick, 1000);
			if (countdown) {
				countdown.textContent = remaining.toString();
			}
		})();
	</script>
</body>
</html>
`))

// RenderRedirectPage expands the countdown page template with the provided data.
func RenderRedirectPage(data RedirectPageData) (string, error) {
	if data.Title == "" {
		data.Title = "Redirecting..."
	}
	var buf bytes.Buffer
	if err := redirectPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
