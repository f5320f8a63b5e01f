package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var name, imagePath string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the face in an image file under a name",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readImagePayload(imagePath)
			if err != nil {
				return err
			}

			user, err := app.Service.Register(cmd.Context(), name, payload)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s registered successfully! (id %d, image %s)\n", user.Name, user.ID, user.ImagePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name to register")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to an image file")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func newVerifyCmd() *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Identify the face in an image file",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readImagePayload(imagePath)
			if err != nil {
				return err
			}

			result, err := app.Service.Verify(cmd.Context(), payload)
			if err != nil {
				return err
			}

			if !result.Recognized {
				return fmt.Errorf("user not recognized")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s! (id %d, distance %.4f)\n", result.User.Name, result.User.ID, result.Distance)
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "path to an image file")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users in registration order",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Store.LoadAll(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No users registered.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tIMAGE\tREGISTERED")
			for _, u := range users {
				registered := "-"
				if !u.RegisteredAt.IsZero() {
					registered = u.RegisteredAt.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.ImagePath, registered)
			}
			return w.Flush()
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import DIR",
		Short: "Register every image in DIR, using the file name as the user name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectImages(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No images found.")
				return nil
			}

			bar := progressbar.NewOptions(len(paths),
				progressbar.OptionSetDescription("Registering"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionClearOnFinish(),
			)

			var failures []string
			for _, path := range paths {
				if err := cmd.Context().Err(); err != nil {
					return err
				}

				payload, err := readImagePayload(path)
				if err == nil {
					_, err = app.Service.Register(cmd.Context(), nameFromPath(path), payload)
				}
				if err != nil {
					failures = append(failures, fmt.Sprintf("%s: %v", path, err))
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registered %d of %d images.\n", len(paths)-len(failures), len(paths))
			for _, f := range failures {
				fmt.Fprintln(out, "  failed:", f)
			}
			return nil
		},
	}
}
