package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/timmy/fotoflix/internal/domain"
)

const maxDescription = 60

var photoHeader = []string{"#", "ID", "AUTHOR", "LIKES", "DESCRIPTION"}

func renderPhotos(w io.Writer, photos []domain.Photo) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	table.Header(photoHeader)
	if err := table.Bulk(photoRows(photos)); err != nil {
		return err
	}
	return table.Render()
}

func photoRows(photos []domain.Photo) [][]string {
	rows := make([][]string, len(photos))
	for i, p := range photos {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			p.ID,
			p.User.Name,
			strconv.Itoa(p.Likes),
			truncate(p.AltDescription, maxDescription),
		}
	}
	return rows
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
