package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegroup/internal/domain"
	"github.com/kozaktomas/facegroup/internal/groupengine"
)

var processInterviewID string

var processCmd = &cobra.Command{
	Use:   "process <fileId>",
	Short: "Run the group engine over a file's extracted faces",
	Long: `process loads the file doc for fileId, takes its already-recorded
ExtractedFaces as the candidate batch, and runs the group engine's
find/create/merge algorithm over them, writing the resulting
faceId->groupId mapping back onto the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVar(&processInterviewID, "interview", "", "Interview scope to confine matching to (optional)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	fileID := args[0]

	ctx := context.Background()
	d, err := wireDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	userID := resolveUserID(d.cfg)

	file, err := d.store.GetFile(ctx, userID, fileID)
	if err != nil {
		return fmt.Errorf("load file: %w", err)
	}
	if file == nil {
		return fmt.Errorf("file %s not found for user %s", fileID, userID)
	}

	faces := make([]domain.FaceInput, len(file.ExtractedFaces))
	for i, f := range file.ExtractedFaces {
		faces[i] = domain.FaceInput{
			FaceID:     f.FaceID,
			BBox:       f.BoundingBox,
			HasBBox:    true,
			Confidence: f.Confidence,
		}
	}

	fmt.Printf("Processing %d candidate faces for file %s (user %s)...\n", len(faces), fileID, userID)

	result, err := d.engine.ProcessBatch(ctx, groupengine.BatchInput{
		UserID:      userID,
		FileID:      fileID,
		InterviewID: processInterviewID,
		Faces:       faces,
	})
	if err != nil {
		return fmt.Errorf("process batch: %w", err)
	}

	fmt.Printf("Processed %d faces into %d group(s):\n", result.ProcessedCount, len(result.Groups))
	for _, g := range result.Groups {
		fmt.Printf("  %s  faces=%d  status=%s\n", g.GroupID, g.FaceCount, g.Status)
	}
	return nil
}
