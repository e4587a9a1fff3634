// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/oliverandrich/go-newsletter/internal/i18n"
)

func newsletterText(ctx context.Context, n Newsletter) string {
	author := map[string]any{"Author": n.AuthorName}

	var b strings.Builder
	fmt.Fprintln(&b, i18n.TData(ctx, "newsletter_greeting", map[string]any{"Name": n.RecipientName}))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, i18n.TData(ctx, "newsletter_intro", author))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, n.Title)
	fmt.Fprintln(&b, n.Snippet+"...")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "%s: %s\n", i18n.T(ctx, "newsletter_read_more"), n.ArticleURL)
	if n.UnsubscribeURL != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "-- ")
		fmt.Fprintln(&b, i18n.TData(ctx, "newsletter_footer", author))
		fmt.Fprintf(&b, "%s: %s\n", i18n.TData(ctx, "newsletter_unsubscribe", author), n.UnsubscribeURL)
	}
	return b.String()
}
