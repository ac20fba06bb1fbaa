package email

// BaseTemplate wraps every message body
const BaseTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { margin: 0; padding: 0; background: #f6f4ef; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #2d2a26; }
        .container { max-width: 600px; margin: 0 auto; padding: 40px 20px; }
        .card { background: #ffffff; border-radius: 12px; padding: 32px; border: 1px solid #e7e2d8; }
        h2 { font-size: 22px; margin: 0 0 16px; }
        p { font-size: 16px; line-height: 1.6; margin: 0 0 16px; }
        .btn { display: inline-block; background: #3b6e4f; color: #ffffff !important; text-decoration: none; padding: 14px 28px; border-radius: 8px; font-weight: 600; }
        .footer { text-align: center; margin-top: 24px; font-size: 13px; color: #8a8479; }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            {{.Content}}
        </div>
        <div class="footer">Células · você recebeu este e-mail porque alguém da sua igreja te convidou.</div>
    </div>
</body>
</html>`

// ConviteTemplate is sent when a leader invites someone by email
const ConviteTemplate = `<h2>Você foi convidado!</h2>
<p>A igreja <strong>{{.IgrejaNome}}</strong> quer te receber{{if .CelulaNome}} na célula <strong>{{.CelulaNome}}</strong>{{end}}.</p>
<p style="text-align:center"><a class="btn" href="{{.Link}}">Aceitar convite</a></p>
<p>O convite vale até {{.ExpiraEm}}.</p>`

var templates = map[string]string{
	"convite": ConviteTemplate,
}
