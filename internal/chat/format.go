package chat

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Underline(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	hotStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

const rule = "--------------------------------------------------"

// FormatRecipe renders r for a terminal. A nil recipe prints a notice.
func FormatRecipe(w io.Writer, r *Recipe) error {
	var b strings.Builder

	if r == nil {
		b.WriteString(hotStyle.Bold(true).Render("No recipe found."))
		b.WriteByte('\n')
		_, err := io.WriteString(w, b.String())
		return err
	}

	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	section := func(name string) {
		line("")
		b.WriteString(headingStyle.Render(name + ":"))
	}

	line(ruleStyle.Render(rule))
	line(ruleStyle.Render("Recipe: ") + titleStyle.Render(r.Name))
	line(ruleStyle.Render(rule))

	if r.Description != "" {
		section("Description")
		line(" " + r.Description)
	}
	if r.ServingSize != "" {
		section("Serving Size")
		line(" " + infoStyle.Render(r.ServingSize))
	}
	if len(r.Ingredients) > 0 {
		section("Ingredients")
		line("")
		for _, ing := range r.Ingredients {
			line(okStyle.Render("✔ " + ing))
		}
	}
	if len(r.Instructions) > 0 {
		section("Instructions")
		line("")
		for i, step := range r.Instructions {
			line(stepStyle.Render(fmt.Sprintf("%d. %s", i+1, step)))
		}
	}
	if r.CuisineType != "" {
		section("Cuisine")
		line(" " + infoStyle.Render(r.CuisineType))
	}
	if len(r.DietaryRestrictions) > 0 {
		section("Dietary Restrictions")
		line(" " + okStyle.Render(strings.Join(r.DietaryRestrictions, ", ")))
	}

	section("Spicy")
	if r.IsSpicy {
		line(" " + hotStyle.Render("Yes 🌶"))
	} else {
		line(" " + infoStyle.Render("No"))
	}

	if len(r.Calories) > 0 {
		section("Calories")
		line("")
		for _, k := range slices.Sorted(maps.Keys(r.Calories)) {
			line(okStyle.Render(fmt.Sprintf("%s: %s", k, r.Calories[k])))
		}
	}

	line(ruleStyle.Render(rule))

	_, err := io.WriteString(w, b.String())
	return err
}
