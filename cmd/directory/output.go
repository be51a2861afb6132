package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/ogurasousui/codex-directory-client/internal/core/employee"
	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
)

var errUsage = errors.New("usage error")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// writeError は通知済みでないエラーを出力します。ストアが失敗を通知した場合は重複して出力しません。
func writeError(w io.Writer, err error) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind != apierror.KindValidation {
			return
		}
		keys := make([]string, 0, len(apiErr.Fields))
		for k := range apiErr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(w, "Error:", apiErr.Message)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, apiErr.Fields[k])
		}
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func (c *cli) flushNotices() {
	if c.app == nil {
		return
	}
	for _, n := range c.app.Notices.Drain() {
		fmt.Fprintf(c.stderr, "%s: %s\n", n.Level, n.Message)
	}
}

func (c *cli) jsonOutput() bool {
	return c.output == "json"
}

func (c *cli) writeJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) writeEmployees(list []employee.Employee) error {
	if c.jsonOutput() {
		return c.writeJSON(list)
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tDEPARTMENT")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Email, e.Department)
	}
	return tw.Flush()
}

func (c *cli) writeEmployee(e *employee.Employee) error {
	if c.jsonOutput() {
		return c.writeJSON(e)
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", e.ID)
	fmt.Fprintf(tw, "Name\t%s\n", e.Name)
	fmt.Fprintf(tw, "Email\t%s\n", e.Email)
	fmt.Fprintf(tw, "Department\t%s\n", e.Department)
	if !e.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Created\t%s\n", e.CreatedAt.Format("2006-01-02 15:04"))
	}
	if !e.UpdatedAt.IsZero() {
		fmt.Fprintf(tw, "Updated\t%s\n", e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
