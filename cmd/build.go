package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fwselect/fwselect-cli/internal/i18n"
	"github.com/fwselect/fwselect-cli/pkg/client"
)

var buildWait bool

var buildCmd = &cobra.Command{
	Use:   "build [name]",
	Short: "Request a firmware image build",
	Long: `Build submits the current (or named) profile to the build service. The
request carries the package argument list computed from the profile's
added/removed packages; the device defaults are supplied by the server.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := profileStore()

		p, err := currentProfile(store)
		if len(args) > 0 {
			p, err = store.Find(args[0])
		}
		if err != nil {
			return err
		}
		if p.Device.Profile == "" {
			return fmt.Errorf("profile %q has no device profile id set", p.Name)
		}

		asu := client.New(settings.Server.BuildServiceURL,
			client.WithLogger(log),
			client.WithPollInterval(time.Duration(settings.Server.PollInterval)*time.Second))

		status, err := asu.RequestBuild(cmd.Context(), client.NewBuildRequest(p))
		if err != nil {
			return err
		}
		fmt.Println(i18n.T("build_submitted", map[string]interface{}{"Hash": status.RequestHash}))

		if !status.Done() {
			if !buildWait {
				fmt.Println(i18n.T("build_queued", map[string]interface{}{"Position": status.QueuePosition}))
				return nil
			}
			status, err = asu.Wait(cmd.Context(), status.RequestHash)
			if err != nil {
				return fmt.Errorf("%s", i18n.T("build_failed", map[string]interface{}{"Error": err.Error()}))
			}
		}

		fmt.Println(i18n.T("build_done", map[string]interface{}{"Count": len(status.Images)}))
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tNAME\tSHA256")
		for _, img := range status.Images {
			fmt.Fprintf(w, "%s\t%s\t%s\n", img.Type, img.Name, img.SHA256)
		}
		return w.Flush()
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildWait, "wait", false, "poll until the build finishes")
	rootCmd.AddCommand(buildCmd)
}
