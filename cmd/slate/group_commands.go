package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"slate/internal/events"
	"slate/internal/pathspec"
	"slate/internal/store"
)

func newGroupCommand(ctx *commandContext) *cobra.Command {
	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Manage template groups",
	}

	groupCmd.AddCommand(newGroupListCommand(ctx))
	groupCmd.AddCommand(newGroupCreateCommand(ctx))
	groupCmd.AddCommand(newGroupShowCommand(ctx))
	groupCmd.AddCommand(newGroupDeleteCommand(ctx))
	groupCmd.AddCommand(newGroupValidateCommand(ctx))

	return groupCmd
}

func newGroupListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List template groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st store.Store) error {
				names, err := st.ListGroups(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, names)
				}
				if len(names) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No template groups defined")
					return nil
				}
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					group, err := st.LoadGroup(cmd.Context(), name)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						group.Name,
						fmt.Sprintf("%d", len(group.Templates())),
						truncate(group.Description, 48),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Group", "Templates", "Description"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newGroupCreateCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a template group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return ctx.withStore(func(st store.Store) error {
				if _, err := st.LoadGroup(cmd.Context(), name); err == nil {
					return fmt.Errorf("template group %q already exists", name)
				} else if !errors.Is(err, store.ErrNotFound) {
					return err
				}

				group := pathspec.NewGroup(name, description)
				if err := st.SaveGroup(cmd.Context(), group); err != nil {
					return err
				}
				ctx.bus().Publish(events.TemplateGroupCreated{Meta: events.NewMeta(), Group: name})
				fmt.Fprintf(cmd.OutOrStdout(), "Created template group %q\n", name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Group description")
	return cmd
}

func newGroupShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a group and its templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st store.Store) error {
				group, err := st.LoadGroup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, groupView(group))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Group: %s\n", group.Name)
				if group.Description != "" {
					fmt.Fprintf(out, "Description: %s\n", group.Description)
				}
				fmt.Fprintf(out, "Updated: %s\n\n", formatTime(group.UpdatedAt))

				templates := group.Templates()
				if len(templates) == 0 {
					fmt.Fprintln(out, "No templates defined")
					return nil
				}
				rows := make([][]string, 0, len(templates))
				for _, tmpl := range templates {
					parent := "-"
					if p := tmpl.Parent(); p != nil {
						parent = p.Name
					}
					rows = append(rows, []string{
						tmpl.Name,
						truncate(tmpl.Raw(), 56),
						parent,
						string(tmpl.Inheritance),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Template", "Pattern", "Parent", "Inheritance"},
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

func newGroupDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a template group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return ctx.withStore(func(st store.Store) error {
				if err := st.DeleteGroup(cmd.Context(), name); err != nil {
					return err
				}
				ctx.bus().Publish(events.TemplateGroupDeleted{Meta: events.NewMeta(), Group: name})
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted template group %q\n", name)
				return nil
			})
		},
	}
}

func newGroupValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate NAME",
		Short: "Validate every template in a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st store.Store) error {
				group, err := st.LoadGroup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				issues := group.ValidateAll()
				out := cmd.OutOrStdout()
				if len(issues) == 0 {
					fmt.Fprintf(out, "Group %q is valid (%d templates)\n", group.Name, len(group.Templates()))
					return nil
				}
				for _, issue := range issues {
					fmt.Fprintf(out, "%s: %s\n", issue.Name, issue.Reason)
				}
				return fmt.Errorf("group %q has %d invalid template(s)", group.Name, len(issues))
			})
		},
	}
}

type templateJSON struct {
	Name        string   `json:"name"`
	Template    string   `json:"template"`
	Effective   string   `json:"effective_template"`
	Parent      string   `json:"parent,omitempty"`
	Inheritance string   `json:"inheritance"`
	Variables   []string `json:"variables"`
}

type groupJSON struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Templates   []templateJSON `json:"templates"`
}

func groupView(group *pathspec.Group) groupJSON {
	view := groupJSON{Name: group.Name, Description: group.Description}
	for _, tmpl := range group.Templates() {
		view.Templates = append(view.Templates, templateView(tmpl))
	}
	return view
}

func templateView(tmpl *pathspec.Template) templateJSON {
	view := templateJSON{
		Name:        tmpl.Name,
		Template:    tmpl.Raw(),
		Effective:   tmpl.EffectiveTemplate(),
		Inheritance: string(tmpl.Inheritance),
		Variables:   tmpl.ReferencedVariables(),
	}
	if p := tmpl.Parent(); p != nil {
		view.Parent = p.Name
	}
	return view
}
