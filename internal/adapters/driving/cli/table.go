package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

// RenderAccounts prints the stored accounts as a table
func RenderAccounts(w io.Writer, accounts []*domain.Account) {
	if len(accounts) == 0 {
		_, _ = io.WriteString(w, text.FgYellow.Sprint("No accounts found")+"\n")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("SERVER"),
		text.FgHiCyan.Sprint("USERNAME"),
		text.FgHiCyan.Sprint("AVATAR"),
		text.FgHiCyan.Sprint("SINCE"),
	})
	for _, account := range accounts {
		since := ""
		if !account.CreatedAt.IsZero() {
			since = account.CreatedAt.Format("2006-01-02")
		}
		t.AppendRow(table.Row{account.ServerURL, account.Username, account.AvatarURL, since})
	}
	t.Render()
}
