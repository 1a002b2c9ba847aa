package view

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Render печатает экран простым текстом.
func Render(w io.Writer, v View) error {
	bw := bufio.NewWriter(w)

	if v.Failure != "" {
		fmt.Fprintf(bw, "!! %s\n", v.Failure)
		return bw.Flush()
	}

	if !v.LoadedAt.IsZero() {
		fmt.Fprintf(bw, "snapshot: %s\n", v.LoadedAt.Format("02.01.2006 15:04:05"))
	}
	for _, r := range v.Regions {
		fmt.Fprintf(bw, "\n== %s [%s] ==\n", r.Title, r.ID)
		for _, row := range r.Rows {
			parts := make([]string, 0, len(row.Fields))
			for _, f := range row.Fields {
				if f.Label == "" {
					parts = append(parts, f.Value)
					continue
				}
				parts = append(parts, f.Label+": "+f.Value)
			}
			line := strings.Join(parts, " | ")
			if row.Key != "" {
				line = "#" + row.Key + "  " + line
			}
			fmt.Fprintln(bw, line)
		}
	}
	return bw.Flush()
}
