package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"slate/internal/events"
	"slate/internal/pathspec"
	"slate/internal/store"
)

func newMappingCommand(ctx *commandContext) *cobra.Command {
	mappingCmd := &cobra.Command{
		Use:   "mapping",
		Short: "Manage studio path mappings",
	}

	mappingCmd.AddCommand(newMappingListCommand(ctx))
	mappingCmd.AddCommand(newMappingCreateCommand(ctx))
	mappingCmd.AddCommand(newMappingShowCommand(ctx))
	mappingCmd.AddCommand(newMappingDeleteCommand(ctx))
	mappingCmd.AddCommand(newMappingSetCommand(ctx))
	mappingCmd.AddCommand(newMappingValidateCommand(ctx))

	return mappingCmd
}

func newMappingListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List studio mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st store.Store) error {
				names, err := st.ListMappings(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, names)
				}
				if len(names) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No studio mappings defined")
					return nil
				}
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					mapping, err := st.LoadMapping(cmd.Context(), name)
					if err != nil {
						return err
					}
					assigned := 0
					for _, slot := range pathspec.Slots {
						if mapping.SlotTemplate(slot) != nil {
							assigned++
						}
					}
					rows = append(rows, []string{
						mapping.Name,
						fmt.Sprintf("%d/%d", assigned, len(pathspec.Slots)),
						yesNo(len(mapping.Validate()) == 0),
						truncate(mapping.Description, 40),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Studio", "Slots", "Valid", "Description"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newMappingCreateCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create STUDIO",
		Short: "Create a studio mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return ctx.withStore(func(st store.Store) error {
				if _, err := st.LoadMapping(cmd.Context(), name); err == nil {
					return fmt.Errorf("studio mapping %q already exists", name)
				} else if !errors.Is(err, store.ErrNotFound) {
					return err
				}

				mapping := pathspec.NewMapping(name, description)
				if err := st.SaveMapping(cmd.Context(), mapping); err != nil {
					return err
				}
				ctx.bus().Publish(events.StudioMappingCreated{Meta: events.NewMeta(), Studio: name})
				fmt.Fprintf(cmd.OutOrStdout(), "Created studio mapping %q\n", name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Mapping description")
	return cmd
}

func newMappingShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show STUDIO",
		Short: "Show a mapping's slot assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st store.Store) error {
				mapping, err := st.LoadMapping(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, mappingView(mapping))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Studio: %s\n", mapping.Name)
				if mapping.Description != "" {
					fmt.Fprintf(out, "Description: %s\n", mapping.Description)
				}
				fmt.Fprintf(out, "Updated: %s\n\n", formatTime(mapping.UpdatedAt))

				rows := make([][]string, 0, len(pathspec.Slots))
				for _, slot := range pathspec.Slots {
					pattern := "-"
					if tmpl := mapping.SlotTemplate(slot); tmpl != nil {
						pattern = truncate(tmpl.EffectiveTemplate(), 64)
					}
					rows = append(rows, []string{slotLabel(slot), pattern})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Slot", "Pattern"},
					rows,
					nil,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newMappingDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete STUDIO",
		Short: "Delete a studio mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return ctx.withStore(func(st store.Store) error {
				if err := st.DeleteMapping(cmd.Context(), name); err != nil {
					return err
				}
				ctx.bus().Publish(events.StudioMappingDeleted{Meta: events.NewMeta(), Studio: name})
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted studio mapping %q\n", name)
				return nil
			})
		},
	}
}

func newMappingSetCommand(ctx *commandContext) *cobra.Command {
	var (
		rawTemplate  string
		fromGroup    string
		fromTemplate string
		clear        bool
	)

	cmd := &cobra.Command{
		Use:   "set STUDIO SLOT",
		Short: "Assign a template to a mapping slot",
		Long: `Assign a template to one of the mapping's path slots. The template
comes either from --raw (an inline pattern) or from an existing group
template via --from-template (with --from-group to pick the group).
Passing --clear removes the assignment instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			studio := args[0]
			slot := pathspec.Slot(args[1])

			if !clear && rawTemplate == "" && fromTemplate == "" {
				return errors.New("one of --raw, --from-template, or --clear is required")
			}
			if rawTemplate != "" && fromTemplate != "" {
				return errors.New("--raw and --from-template are mutually exclusive")
			}

			return ctx.withStore(func(st store.Store) error {
				mapping, err := st.LoadMapping(cmd.Context(), studio)
				if err != nil {
					return err
				}

				var tmpl *pathspec.Template
				switch {
				case clear:
					tmpl = nil
				case rawTemplate != "":
					tmpl, err = pathspec.NewTemplate(string(slot), rawTemplate)
					if err != nil {
						return err
					}
				default:
					groupName, err := ctx.resolveGroupName(fromGroup)
					if err != nil {
						return err
					}
					group, err := st.LoadGroup(cmd.Context(), groupName)
					if err != nil {
						return err
					}
					source, err := group.Template(fromTemplate)
					if err != nil {
						return err
					}
					tmpl, err = flattenTemplate(source)
					if err != nil {
						return err
					}
				}

				if err := mapping.SetSlot(slot, tmpl); err != nil {
					return err
				}
				if err := st.SaveMapping(cmd.Context(), mapping); err != nil {
					return err
				}
				ctx.bus().Publish(events.MappingTemplateSet{Meta: events.NewMeta(), Studio: studio, Slot: string(slot)})
				if clear {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s on %q\n", slot, studio)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Set %s on %q\n", slot, studio)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&rawTemplate, "raw", "", "Inline template pattern")
	cmd.Flags().StringVar(&fromGroup, "from-group", "", "Group to copy the template from (defaults to resolver.default_group)")
	cmd.Flags().StringVar(&fromTemplate, "from-template", "", "Group template to assign")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the slot assignment")
	return cmd
}

// flattenTemplate copies a group template into a standalone one with
// its inheritance chain folded into the raw pattern. Mapping slots
// persist without group context, so parent links cannot survive there.
func flattenTemplate(source *pathspec.Template) (*pathspec.Template, error) {
	var vars []pathspec.Variable
	seen := make(map[string]struct{})
	for tmpl := source; tmpl != nil; tmpl = tmpl.Parent() {
		for _, v := range tmpl.Variables() {
			if _, ok := seen[v.Name]; ok {
				continue
			}
			seen[v.Name] = struct{}{}
			vars = append(vars, v)
		}
	}

	flat, err := pathspec.NewTemplate(source.Name, source.EffectiveTemplate(), vars...)
	if err != nil {
		return nil, err
	}
	flat.Description = source.Description
	return flat, nil
}

func newMappingValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate STUDIO",
		Short: "Validate a mapping's slot assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st store.Store) error {
				mapping, err := st.LoadMapping(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				issues := mapping.Validate()
				out := cmd.OutOrStdout()
				if len(issues) == 0 {
					fmt.Fprintf(out, "Studio mapping %q is valid\n", mapping.Name)
					return nil
				}
				for _, issue := range issues {
					fmt.Fprintf(out, "%s: %s\n", issue.Name, issue.Reason)
				}
				return fmt.Errorf("studio mapping %q has %d issue(s)", mapping.Name, len(issues))
			})
		},
	}
}

type mappingJSON struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Slots       map[string]string `json:"slots"`
}

func mappingView(mapping *pathspec.Mapping) mappingJSON {
	view := mappingJSON{
		Name:        mapping.Name,
		Description: mapping.Description,
		Slots:       make(map[string]string),
	}
	for _, slot := range pathspec.Slots {
		if tmpl := mapping.SlotTemplate(slot); tmpl != nil {
			view.Slots[string(slot)] = tmpl.EffectiveTemplate()
		}
	}
	return view
}
