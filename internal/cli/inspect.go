package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/pipeline"
	"github.com/matzehuels/kinreport/pkg/relation"
	"github.com/matzehuels/kinreport/pkg/stats"
)

// inspectCommand creates the inspect command: classification and
// statistics for a DNI without drawing anything.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain, asJSON, refresh, noCache bool

	cmd := &cobra.Command{
		Use:   "inspect <dni>",
		Short: "Browse how relatives are classified into layers and branches",
		Long: `Inspect fetches the DNI and shows the tree layers, the report branches and
the dashboard statistics. It opens an interactive browser unless --plain or
--json is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(context.WithoutCancel(ctx))

			now := time.Now()
			in, err := runner.Inspect(ctx, args[0], refresh, now)
			if err != nil {
				return err
			}

			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(inspectionJSON(in))
			case plain:
				printInspection(in, now)
				return nil
			}
			_, err = tea.NewProgram(NewInspectModel(in, now), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print tables instead of the interactive browser")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the inspection as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the lookup cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// printInspection writes the non-interactive form of inspect.
func printInspection(in pipeline.Inspection, now time.Time) {
	p := in.Lookup.Principal
	printKeyValue("Principal", p.DisplayName())
	printKeyValue("DNI", kin.OrNA(p.DNI))
	printKeyValue("Relatives", strconv.Itoa(len(in.Lookup.Relatives)))
	printKeyValue("Canvas", fmt.Sprintf("%.0f px", in.Height))
	fmt.Fprintln(out)

	for _, l := range in.Layers {
		rows := make([][]string, len(l.People))
		for i, person := range l.People {
			rows[i] = personRow(person, now)
		}
		printTable(l.Name(), personHeaders, rows, nil)
	}
	if len(in.Dropped) > 0 {
		rows := make([][]string, len(in.Dropped))
		for i, person := range in.Dropped {
			rows[i] = personRow(person, now)
		}
		printTable("Sin clasificar (not drawn in the tree)", personHeaders, rows, nil)
	}

	s := in.Stats
	var branchRows [][]string
	for _, b := range s.BranchBuckets() {
		branchRows = append(branchRows, []string{b.Label, strconv.Itoa(b.Count), percent(s.Percent(b.Count))})
	}
	branchRows = append(branchRows, []string{"Hijos (también en Directa)", strconv.Itoa(s.Children), percent(s.Percent(s.Children))})
	printTable("Ramas", []string{"Rama", "Total", "%"}, branchRows, nil)

	sexRows := [][]string{
		{"Masculino", strconv.Itoa(s.Male), percent(s.Percent(s.Male))},
		{"Femenino", strconv.Itoa(s.Female), percent(s.Percent(s.Female))},
		{"Desconocido", strconv.Itoa(s.UnknownSex), percent(s.Percent(s.UnknownSex))},
	}
	printTable("Sexo", []string{"Sexo", "Total", "%"}, sexRows, nil)
	if s.Inferred > 0 {
		printDetail("%d of the sex assignments were inferred from the relation label", s.Inferred)
	}

	var ageRows [][]string
	for _, b := range s.Coarse {
		ageRows = append(ageRows, []string{b.Label, strconv.Itoa(b.Count)})
	}
	ageRows = append(ageRows, []string{"Sin edad", strconv.Itoa(s.UnknownAge)})
	printTable("Edades", []string{"Rango", "Total"}, ageRows, nil)
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// inspectionView is the --json shape of an inspection.
type inspectionView struct {
	Principal kin.Person          `json:"principal"`
	Layers    map[string][]string `json:"layers"`
	Dropped   []string            `json:"dropped,omitempty"`
	Branches  map[string]int      `json:"branches"`
	Stats     stats.Snapshot      `json:"stats"`
	Height    float64             `json:"canvas_height"`
}

func inspectionJSON(in pipeline.Inspection) inspectionView {
	v := inspectionView{
		Principal: in.Lookup.Principal,
		Layers:    make(map[string][]string, len(in.Layers)),
		Branches:  make(map[string]int, relation.NumBranches),
		Stats:     in.Stats,
		Height:    in.Height,
	}
	for _, l := range in.Layers {
		for _, p := range l.People {
			v.Layers[l.Name()] = append(v.Layers[l.Name()], p.DisplayName())
		}
	}
	for _, p := range in.Dropped {
		v.Dropped = append(v.Dropped, p.DisplayName())
	}
	counts := in.Branches.Counts()
	for _, b := range relation.Branches() {
		v.Branches[b.String()] = counts[b]
	}
	return v
}
