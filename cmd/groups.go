package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Inspect and manipulate face groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every group for the current user",
	RunE:  runGroupsList,
}

var groupsGetCmd = &cobra.Command{
	Use:   "get <groupId>",
	Short: "Show a single group",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupsGet,
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <groupName> <faceId> [faceId...]",
	Short: "Create a new named group from one or more faces",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runGroupsCreate,
}

var groupsAddFaceCmd = &cobra.Command{
	Use:   "add-face <groupId> <faceId> [fileId]",
	Short: "Move a face into a group, creating its face doc if it doesn't exist yet",
	Long: `add-face moves faceId into groupId. If faceId has no face doc yet
(a newly detected face not yet seen by the group engine), one is created;
fileId then identifies the source file it belongs to and is otherwise
ignored.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runGroupsAddFace,
}

var groupsRemoveFaceCmd = &cobra.Command{
	Use:   "remove-face <groupId> <faceId>",
	Short: "Detach a face from a group",
	Args:  cobra.ExactArgs(2),
	RunE:  runGroupsRemoveFace,
}

var groupsRenameCmd = &cobra.Command{
	Use:   "rename <groupId> <personName>",
	Short: "Assign a person's name to a group",
	Args:  cobra.ExactArgs(2),
	RunE:  runGroupsRename,
}

var groupsMergeCmd = &cobra.Command{
	Use:   "merge <targetGroupId> <sourceGroupId>",
	Short: "Merge sourceGroupId into targetGroupId",
	Args:  cobra.ExactArgs(2),
	RunE:  runGroupsMerge,
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <groupId>",
	Short: "Delete a group and its member faces",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupsDelete,
}

var groupsClearAllCmd = &cobra.Command{
	Use:   "clear-all",
	Short: "Delete every group and face doc for the test user (destructive, test-only)",
	Args:  cobra.NoArgs,
	RunE:  runGroupsClearAll,
}

var createInterviewID string

func init() {
	rootCmd.AddCommand(groupsCmd)
	groupsCmd.AddCommand(groupsListCmd, groupsGetCmd, groupsCreateCmd, groupsAddFaceCmd,
		groupsRemoveFaceCmd, groupsRenameCmd, groupsMergeCmd, groupsDeleteCmd, groupsClearAllCmd)
	groupsCreateCmd.Flags().StringVar(&createInterviewID, "interview", "", "Interview scope for the new group (optional)")
}

func runGroupsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	userID := resolveUserID(d.cfg)
	groups, err := d.store.ListGroups(ctx, userID)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}

	if len(groups) == 0 {
		fmt.Println("No groups.")
		return nil
	}
	for _, g := range groups {
		name := g.GroupName
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%s  %-20s  faces=%-4d  status=%-10s  updated=%s\n",
			g.GroupID, name, g.FaceCount, g.Status, g.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}

func runGroupsGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	userID := resolveUserID(d.cfg)
	group, err := d.store.GetGroup(ctx, userID, args[0])
	if err != nil {
		return fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return fmt.Errorf("group %s not found", args[0])
	}

	fmt.Printf("GroupID:     %s\n", group.GroupID)
	fmt.Printf("Name:        %s\n", group.GroupName)
	fmt.Printf("PersonName:  %s\n", group.PersonName)
	fmt.Printf("Status:      %s\n", group.Status)
	fmt.Printf("InterviewID: %s\n", group.InterviewID)
	fmt.Printf("LeaderFace:  %s\n", group.LeaderFaceID)
	fmt.Printf("Faces (%d):  %v\n", group.FaceCount, group.FaceIDs)
	fmt.Printf("Files:       %v\n", group.FileIDs)
	fmt.Printf("MergedFrom:  %v\n", group.MergedFrom)
	fmt.Printf("CreatedAt:   %s\n", group.CreatedAt)
	fmt.Printf("UpdatedAt:   %s\n", group.UpdatedAt)
	return nil
}

func runGroupsCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	userID := resolveUserID(d.cfg)
	groupName, faceIDs := args[0], args[1:]

	group, err := d.ops.CreateGroupWithFaces(ctx, userID, createInterviewID, groupName, faceIDs)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	fmt.Printf("Created group %s (%q) with %d face(s)\n", group.GroupID, group.GroupName, group.FaceCount)
	return nil
}

func runGroupsAddFace(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	var fileID string
	if len(args) == 3 {
		fileID = args[2]
	}

	userID := resolveUserID(d.cfg)
	group, err := d.ops.AddFaceToGroup(ctx, userID, args[0], args[1], fileID)
	if err != nil {
		return fmt.Errorf("add face: %w", err)
	}
	fmt.Printf("Group %s now has %d face(s)\n", group.GroupID, group.FaceCount)
	return nil
}

func runGroupsRemoveFace(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	userID := resolveUserID(d.cfg)
	group, err := d.ops.RemoveFaceFromGroup(ctx, userID, args[0], args[1])
	if err != nil {
		return fmt.Errorf("remove face: %w", err)
	}
	fmt.Printf("Group %s now has %d face(s)\n", group.GroupID, group.FaceCount)
	return nil
}

func runGroupsRename(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	userID := resolveUserID(d.cfg)
	group, err := d.ops.RenameGroup(ctx, userID, args[0], args[1])
	if err != nil {
		return fmt.Errorf("rename group: %w", err)
	}
	fmt.Printf("Group %s renamed to %q (normalized: %q)\n", group.GroupID, group.GroupName, group.PersonName)
	return nil
}

func runGroupsMerge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	userID := resolveUserID(d.cfg)
	merged, err := d.ops.MergeGroups(ctx, userID, args[0], args[1])
	if err != nil {
		return fmt.Errorf("merge groups: %w", err)
	}
	fmt.Printf("Merged into %s, now %d face(s)\n", merged.GroupID, merged.FaceCount)
	return nil
}

func runGroupsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	userID := resolveUserID(d.cfg)
	if err := d.ops.DeleteGroup(ctx, userID, args[0]); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	fmt.Printf("Deleted group %s\n", args[0])
	return nil
}

func runGroupsClearAll(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	userID := resolveUserID(d.cfg)
	deleted, err := d.ops.ClearAllGroups(ctx, userID)
	if err != nil {
		return fmt.Errorf("clear all groups: %w", err)
	}
	fmt.Printf("Deleted %d group(s) for user %s\n", deleted, userID)
	return nil
}
