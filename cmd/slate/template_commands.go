package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slate/internal/events"
	"slate/internal/pathspec"
	"slate/internal/store"
)

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Manage templates within a group",
	}

	templateCmd.AddCommand(newTemplateListCommand(ctx))
	templateCmd.AddCommand(newTemplateCreateCommand(ctx))
	templateCmd.AddCommand(newTemplateShowCommand(ctx))
	templateCmd.AddCommand(newTemplateUpdateCommand(ctx))
	templateCmd.AddCommand(newTemplateDeleteCommand(ctx))
	templateCmd.AddCommand(newTemplateFormatCommand(ctx))

	return templateCmd
}

func groupFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "group", "g", "", "Template group (defaults to resolver.default_group)")
}

func (c *commandContext) resolveGroupName(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Resolver.DefaultGroup, nil
}

// mutateGroup loads the group, applies fn, and saves it back.
func (c *commandContext) mutateGroup(cmd *cobra.Command, groupFlag string, fn func(*pathspec.Group) error) error {
	name, err := c.resolveGroupName(groupFlag)
	if err != nil {
		return err
	}
	return c.withStore(func(st store.Store) error {
		group, err := st.LoadGroup(cmd.Context(), name)
		if err != nil {
			return err
		}
		if err := fn(group); err != nil {
			return err
		}
		return st.SaveGroup(cmd.Context(), group)
	})
}

func newTemplateListCommand(ctx *commandContext) *cobra.Command {
	var groupName string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates in a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := ctx.resolveGroupName(groupName)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st store.Store) error {
				group, err := st.LoadGroup(cmd.Context(), name)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, groupView(group))
				}
				templates := group.Templates()
				if len(templates) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Group %q has no templates\n", name)
					return nil
				}
				rows := make([][]string, 0, len(templates))
				for _, tmpl := range templates {
					rows = append(rows, []string{
						tmpl.Name,
						truncate(tmpl.EffectiveTemplate(), 64),
						fmt.Sprintf("%d", len(tmpl.ReferencedVariables())),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Template", "Effective Pattern", "Variables"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	groupFlag(cmd, &groupName)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newTemplateCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		groupName    string
		template     string
		description  string
		parent       string
		inheritance  string
		varFlags     []string
		defaultFlags []string
		allowedFlags []string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			mode, err := pathspec.ParseInheritance(inheritance)
			if err != nil {
				return err
			}
			vars, err := parseVariableFlags(varFlags, defaultFlags, allowedFlags)
			if err != nil {
				return err
			}

			err = ctx.mutateGroup(cmd, groupName, func(group *pathspec.Group) error {
				_, err := group.CreateTemplate(pathspec.TemplateSpec{
					Name:        name,
					Template:    template,
					Description: description,
					Variables:   vars,
					Parent:      parent,
					Inheritance: mode,
				})
				return err
			})
			if err != nil {
				return err
			}

			resolved, _ := ctx.resolveGroupName(groupName)
			ctx.bus().Publish(events.TemplateCreated{Meta: events.NewMeta(), Group: resolved, Template: name})
			fmt.Fprintf(cmd.OutOrStdout(), "Created template %q\n", name)
			return nil
		},
	}

	groupFlag(cmd, &groupName)
	cmd.Flags().StringVarP(&template, "template", "t", "", "Template pattern, e.g. /projects/{PROJECT}/assets/{ASSET_NAME}")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Template description")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent template for inheritance")
	cmd.Flags().StringVar(&inheritance, "inheritance", "", "Inheritance mode: NONE, EXTEND, or OVERRIDE")
	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "Declare a variable as NAME or NAME=TYPE (repeatable)")
	cmd.Flags().StringArrayVar(&defaultFlags, "var-default", nil, "Default value as NAME=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&allowedFlags, "var-allowed", nil, "Allowed values as NAME=V1,V2 (repeatable)")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func newTemplateShowCommand(ctx *commandContext) *cobra.Command {
	var groupName string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a template's pattern and variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := ctx.resolveGroupName(groupName)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st store.Store) error {
				group, err := st.LoadGroup(cmd.Context(), name)
				if err != nil {
					return err
				}
				tmpl, err := group.Template(args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, templateView(tmpl))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Template: %s\n", tmpl.Name)
				if tmpl.Description != "" {
					fmt.Fprintf(out, "Description: %s\n", tmpl.Description)
				}
				fmt.Fprintf(out, "Pattern: %s\n", tmpl.Raw())
				if p := tmpl.Parent(); p != nil {
					fmt.Fprintf(out, "Parent: %s (%s)\n", p.Name, tmpl.Inheritance)
					fmt.Fprintf(out, "Effective: %s\n", tmpl.EffectiveTemplate())
				}
				fmt.Fprintf(out, "Updated: %s\n", formatTime(tmpl.UpdatedAt))

				variables := tmpl.Variables()
				if len(variables) == 0 {
					return nil
				}
				fmt.Fprintln(out)
				rows := make([][]string, 0, len(variables))
				for _, v := range variables {
					def := "-"
					if v.Default != nil {
						def = fmt.Sprint(v.Default)
					}
					rows = append(rows, []string{
						v.Name,
						string(v.Type),
						yesNo(v.Required),
						def,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Variable", "Type", "Required", "Default"},
					rows,
					nil,
				))
				return nil
			})
		},
	}

	groupFlag(cmd, &groupName)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newTemplateUpdateCommand(ctx *commandContext) *cobra.Command {
	var (
		groupName    string
		template     string
		description  string
		parent       string
		inheritance  string
		clearParent  bool
		varFlags     []string
		defaultFlags []string
		allowedFlags []string
	)

	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Update a template",
		Long: `Update a template in place. Only the provided flags change; a failed
update leaves the template exactly as it was. Passing any --var flag
replaces the declared variable set wholesale.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			update := pathspec.TemplateUpdate{}

			if cmd.Flags().Changed("template") {
				update.Template = &template
			}
			if cmd.Flags().Changed("description") {
				update.Description = &description
			}
			if cmd.Flags().Changed("inheritance") {
				mode, err := pathspec.ParseInheritance(inheritance)
				if err != nil {
					return err
				}
				update.Inheritance = &mode
			}
			if clearParent {
				empty := ""
				update.Parent = &empty
			} else if cmd.Flags().Changed("parent") {
				update.Parent = &parent
			}
			if len(varFlags) > 0 {
				vars, err := parseVariableFlags(varFlags, defaultFlags, allowedFlags)
				if err != nil {
					return err
				}
				update.Variables = vars
				update.ReplaceVars = true
			}

			err := ctx.mutateGroup(cmd, groupName, func(group *pathspec.Group) error {
				_, err := group.UpdateTemplate(name, update)
				return err
			})
			if err != nil {
				return err
			}

			resolved, _ := ctx.resolveGroupName(groupName)
			ctx.bus().Publish(events.TemplateUpdated{Meta: events.NewMeta(), Group: resolved, Template: name})
			fmt.Fprintf(cmd.OutOrStdout(), "Updated template %q\n", name)
			return nil
		},
	}

	groupFlag(cmd, &groupName)
	cmd.Flags().StringVarP(&template, "template", "t", "", "New template pattern")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&parent, "parent", "", "New parent template")
	cmd.Flags().StringVar(&inheritance, "inheritance", "", "New inheritance mode")
	cmd.Flags().BoolVar(&clearParent, "clear-parent", false, "Detach from the current parent")
	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "Replace variables: NAME or NAME=TYPE (repeatable)")
	cmd.Flags().StringArrayVar(&defaultFlags, "var-default", nil, "Default value as NAME=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&allowedFlags, "var-allowed", nil, "Allowed values as NAME=V1,V2 (repeatable)")
	return cmd
}

func newTemplateDeleteCommand(ctx *commandContext) *cobra.Command {
	var groupName string

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			err := ctx.mutateGroup(cmd, groupName, func(group *pathspec.Group) error {
				return group.DeleteTemplate(name)
			})
			if err != nil {
				return err
			}
			resolved, _ := ctx.resolveGroupName(groupName)
			ctx.bus().Publish(events.TemplateDeleted{Meta: events.NewMeta(), Group: resolved, Template: name})
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %q\n", name)
			return nil
		},
	}

	groupFlag(cmd, &groupName)
	return cmd
}

func newTemplateFormatCommand(ctx *commandContext) *cobra.Command {
	var groupName string
	var bindingFlags []string

	cmd := &cobra.Command{
		Use:   "format NAME",
		Short: "Format a template with variable bindings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings, err := parseBindings(bindingFlags)
			if err != nil {
				return err
			}
			name, err := ctx.resolveGroupName(groupName)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st store.Store) error {
				group, err := st.LoadGroup(cmd.Context(), name)
				if err != nil {
					return err
				}
				tmpl, err := group.Template(args[0])
				if err != nil {
					return err
				}
				path, err := tmpl.FormatEffective(bindings)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}

	groupFlag(cmd, &groupName)
	cmd.Flags().StringArrayVar(&bindingFlags, "set", nil, "Variable binding as KEY=VALUE (repeatable)")
	return cmd
}
