package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"whatsapp-autoreply/internal/builder"
	"whatsapp-autoreply/pkg/models"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a reply and save it as a new ready flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBuilder(cmd.Context())
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			trigger, _ := cmd.Flags().GetString("trigger")
			tone, _ := cmd.Flags().GetString("tone")
			goal, _ := cmd.Flags().GetString("goal")
			knowledge, _ := cmd.Flags().GetString("context")

			t := models.Tone(strings.ToLower(strings.TrimSpace(tone)))
			if t != "" && !t.Valid() {
				return fmt.Errorf("unknown tone %q", tone)
			}

			flow, err := b.Generate(cmd.Context(), models.GenerateRequest{
				Name:          strings.TrimSpace(name),
				TriggerPhrase: strings.TrimSpace(trigger),
				AITone:        t,
				Goal:          strings.TrimSpace(goal),
				Context:       knowledge,
			})
			if err != nil {
				return err
			}
			printFlow(cmd.OutOrStdout(), flow)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Automation name.")
	cmd.Flags().String("trigger", "", "Trigger phrase matched against inbound messages.")
	cmd.Flags().String("tone", string(models.DefaultTone), "Tone: friendly|professional|concise|empathetic.")
	cmd.Flags().String("goal", "", "Business goal of the reply.")
	cmd.Flags().String("context", "", "Knowledge base or extra context.")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBuilder(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			flows := b.List()
			if len(flows) == 0 {
				_, _ = fmt.Fprintln(out, "No automations yet. Create one with `autoflow create`.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tTRIGGER\tTONE\tSTATUS\tTEST PHONE")
			for _, f := range flows {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.TriggerPhrase, f.AITone, f.Status, f.TestPhone)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			ready, drafts := b.Counts()
			_, _ = fmt.Fprintf(out, "\n%d ready, %d draft\n", ready, drafts)
			return nil
		},
	}
}

func newRegenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate <id>",
		Short: "Generate a fresh reply for an existing flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBuilder(cmd.Context())
			if err != nil {
				return err
			}
			flow, err := b.Regenerate(cmd.Context(), args[0])
			printFlow(cmd.OutOrStdout(), flow)
			return err
		},
	}
}

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit fields of a saved flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}
			b, err := newBuilder(cmd.Context())
			if err != nil {
				return err
			}
			flow, err := b.Edit(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			printFlow(cmd.OutOrStdout(), flow)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Automation name.")
	cmd.Flags().String("trigger", "", "Trigger phrase.")
	cmd.Flags().String("tone", "", "Tone: friendly|professional|concise|empathetic.")
	cmd.Flags().String("goal", "", "Business goal.")
	cmd.Flags().String("context", "", "Knowledge base or extra context.")
	cmd.Flags().String("preview", "", "Replace the message preview text.")
	cmd.Flags().String("test-phone", "", "WhatsApp number used by `autoflow send`.")
	return cmd
}

// patchFromFlags only sets the fields whose flags were given
func patchFromFlags(cmd *cobra.Command) (builder.Patch, error) {
	var patch builder.Patch
	str := func(flag string) *string {
		if !cmd.Flags().Changed(flag) {
			return nil
		}
		v, _ := cmd.Flags().GetString(flag)
		return &v
	}
	patch.Name = str("name")
	patch.TriggerPhrase = str("trigger")
	patch.Goal = str("goal")
	patch.Context = str("context")
	patch.MessagePreview = str("preview")
	patch.TestPhone = str("test-phone")
	if v := str("tone"); v != nil {
		t := models.Tone(strings.ToLower(strings.TrimSpace(*v)))
		if !t.Valid() {
			return patch, fmt.Errorf("unknown tone %q", *v)
		}
		patch.AITone = &t
	}
	return patch, nil
}

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <id>",
		Short: "Send the flow's preview to its test phone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBuilder(cmd.Context())
			if err != nil {
				return err
			}
			flow, sid, err := b.SendTest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent %q to %s (sid %s)\n", flow.Name, flow.TestPhone, sid)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBuilder(cmd.Context())
			if err != nil {
				return err
			}
			if err := b.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print ready flows as an AUTOMATION_FLOWS value",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBuilder(cmd.Context())
			if err != nil {
				return err
			}
			data, err := b.ExportReady()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newActivityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activity",
		Short: "Show the server's recent activity feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := serverClient().Activity(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				_, _ = fmt.Fprintf(out, "%s  %-10s  %s\n", e.Timestamp.Local().Format("15:04:05"), e.Type, e.Message)
			}
			return nil
		},
	}
}

func newWebhookListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "webhook-list",
		Short: "Show the automations the server's webhook matches against",
		RunE: func(cmd *cobra.Command, args []string) error {
			flows, err := serverClient().WebhookAutomations(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(flows)
		},
	}
}

func printFlow(out io.Writer, flow models.AutomationFlow) {
	if flow.ID == "" {
		return
	}
	_, _ = fmt.Fprintf(out, "%s  %s  [%s]\n", flow.ID, flow.Name, flow.Status)
	if flow.Error != "" {
		_, _ = fmt.Fprintf(out, "error: %s\n", flow.Error)
	}
	if flow.MessagePreview != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", flow.MessagePreview)
	}
}
