package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-codepath/internal/scanner"
)

// TreeNode represents a node in the file tree for JSON output
type TreeNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Type     string      `json:"type"` // "file" or "directory"
	Language string      `json:"language,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "List the files that would be analyzed",
	Long: `Shows a tree of the JavaScript and TypeScript files under the given path,
after the configured languages, default excludes and ignore files apply.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("getting absolute path: %w", err)
		}

		files, err := scanner.New(scannerOptions(appConfig)).Scan(cmd.Context(), absPath)
		if err != nil {
			return fmt.Errorf("scanning directory: %w", err)
		}

		tree := buildTree(absPath, files)
		out := cmd.OutOrStdout()

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.MarshalIndent(tree, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "%s/\n", tree.Name)
		for i, child := range tree.Children {
			printTree(out, child, "", i == len(tree.Children)-1)
		}
		return nil
	},
}

func init() {
	treeCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

// buildTree builds a tree structure from file list
func buildTree(root string, files []scanner.File) *TreeNode {
	rootNode := &TreeNode{
		Name: filepath.Base(root),
		Path: root,
		Type: "directory",
	}

	dirs := make(map[string]*TreeNode)

	for _, file := range files {
		parts := strings.Split(file.Path, "/")
		current := rootNode

		for i, part := range parts {
			if i == len(parts)-1 {
				current.Children = append(current.Children, &TreeNode{
					Name:     part,
					Path:     file.FullPath,
					Type:     "file",
					Language: string(file.Language),
				})
				break
			}

			dir := strings.Join(parts[:i+1], "/")
			child, ok := dirs[dir]
			if !ok {
				child = &TreeNode{
					Name: part,
					Path: filepath.Join(root, filepath.FromSlash(dir)),
					Type: "directory",
				}
				current.Children = append(current.Children, child)
				dirs[dir] = child
			}
			current = child
		}
	}

	sortTree(rootNode)
	return rootNode
}

// sortTree sorts tree nodes (directories first, then alphabetically)
func sortTree(node *TreeNode) {
	sort.Slice(node.Children, func(i, j int) bool {
		if node.Children[i].Type != node.Children[j].Type {
			return node.Children[i].Type == "directory"
		}
		return node.Children[i].Name < node.Children[j].Name
	})

	for _, child := range node.Children {
		if child.Type == "directory" {
			sortTree(child)
		}
	}
}

func printTree(w io.Writer, node *TreeNode, prefix string, isLast bool) {
	connector, indent := "├── ", "│   "
	if isLast {
		connector, indent = "└── ", "    "
	}

	if node.Type == "file" {
		fmt.Fprintf(w, "%s%s%s (%s)\n", prefix, connector, node.Name, node.Language)
		return
	}

	fmt.Fprintf(w, "%s%s%s/\n", prefix, connector, node.Name)
	for i, child := range node.Children {
		printTree(w, child, prefix+indent, i == len(node.Children)-1)
	}
}
