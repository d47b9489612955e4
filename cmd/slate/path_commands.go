package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"slate/internal/pathspec"
	"slate/internal/resolver"
)

func newPathCommand(ctx *commandContext) *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Resolve, analyze, and convert pipeline paths",
	}

	pathCmd.AddCommand(newPathResolveCommand(ctx))
	pathCmd.AddCommand(newPathAnalyzeCommand(ctx))
	pathCmd.AddCommand(newPathConvertCommand(ctx))
	pathCmd.AddCommand(newPathMkdirsCommand(ctx))

	return pathCmd
}

type resolveFlags struct {
	studio   string
	entity   string
	data     string
	project  string
	name     string
	bindings []string
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.studio, "studio", "s", "", "Studio mapping (defaults to resolver.default_studio)")
	cmd.Flags().StringVarP(&f.entity, "entity", "e", "", "Entity type: asset, shot, sequence, episode, series, or project")
	cmd.Flags().StringVar(&f.data, "data", "", "Data type: work, published, cache, published_cache, render, or deliverable")
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "Project name bound to {PROJECT}")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "Entity name bound to {ASSET_NAME} or {SHOT_NAME}")
	cmd.Flags().StringArrayVar(&f.bindings, "set", nil, "Extra variable binding as KEY=VALUE (repeatable)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("data")
}

func (f *resolveFlags) request() (resolver.Request, error) {
	entity, err := pathspec.ParseEntityType(f.entity)
	if err != nil {
		return resolver.Request{}, err
	}
	data, err := pathspec.ParseDataType(f.data)
	if err != nil {
		return resolver.Request{}, err
	}
	extras, err := parseBindings(f.bindings)
	if err != nil {
		return resolver.Request{}, err
	}
	return resolver.Request{
		Studio:     f.studio,
		EntityType: entity,
		DataType:   data,
		Project:    f.project,
		EntityName: f.name,
		Extras:     extras,
	}, nil
}

func newPathResolveCommand(ctx *commandContext) *cobra.Command {
	flags := &resolveFlags{}
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a folder path from the studio mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			return ctx.withResolver(func(svc *resolver.Service) error {
				path, err := svc.Path(cmd.Context(), req)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, map[string]string{"path": path})
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPathAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var studio string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "analyze PATH",
		Short: "Extract entity, data type, and variables from a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withResolver(func(svc *resolver.Service) error {
				match, ok, err := svc.Analyze(cmd.Context(), studio, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("path %q does not match any template for the studio", args[0])
				}
				if jsonOutput {
					return writeJSON(cmd, match)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Studio: %s\n", match.Studio)
				fmt.Fprintf(out, "Entity: %s\n", match.EntityType)
				fmt.Fprintf(out, "Data: %s\n", match.DataType)
				fmt.Fprintf(out, "Template: %s\n", match.Template)
				if len(match.Variables) > 0 {
					fmt.Fprintln(out)
					rows := make([][]string, 0, len(match.Variables))
					for _, name := range sortedKeys(match.Variables) {
						rows = append(rows, []string{name, match.Variables[name]})
					}
					fmt.Fprintln(out, renderTable([]string{"Variable", "Value"}, rows, nil))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&studio, "studio", "s", "", "Studio mapping (defaults to resolver.default_studio)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPathConvertCommand(ctx *commandContext) *cobra.Command {
	var sourceStudio, targetStudio string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "convert PATH",
		Short: "Convert a path between studio layouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withResolver(func(svc *resolver.Service) error {
				converted, err := svc.Convert(cmd.Context(), sourceStudio, targetStudio, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, map[string]string{
						"source_path": args[0],
						"target_path": converted,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), converted)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sourceStudio, "from", "", "Source studio mapping")
	cmd.Flags().StringVar(&targetStudio, "to", "", "Target studio mapping")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPathMkdirsCommand(ctx *commandContext) *cobra.Command {
	flags := &resolveFlags{}

	cmd := &cobra.Command{
		Use:   "mkdirs",
		Short: "Resolve a path and create its folders under the project root",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := checkWritableRoot(cfg.Paths.ProjectRoot); err != nil {
				return err
			}
			return ctx.withResolver(func(svc *resolver.Service) error {
				created, err := svc.CreateFolders(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", created)
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

// minFreeBytes is the floor below which folder creation is refused; a
// pipeline root this full is about to fail for other reasons anyway.
const minFreeBytes = 16 << 20

// checkWritableRoot verifies the project root exists, is writable, and
// has free space before any directories are created.
func checkWritableRoot(root string) error {
	if root == "" {
		return fmt.Errorf("paths.project_root is not configured")
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root %s is not a directory", root)
	}
	if err := unix.Access(root, unix.W_OK); err != nil {
		return fmt.Errorf("project root %s is not writable: %w", root, err)
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(filepath.Clean(root), &stat); err != nil {
		return fmt.Errorf("statfs project root: %w", err)
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return fmt.Errorf("project root %s has only %d bytes free", root, free)
	}
	return nil
}
