package cli

import (
	"crypto/sha256"
	"fmt"

	"github.com/spf13/cobra"

	easycurl "github.com/willdrewes/easy-curl-client"
	"github.com/willdrewes/easy-curl-client/client/download"
	"github.com/willdrewes/easy-curl-client/curl"
)

func newDownloadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download URL",
		Short: "Stream a resource into the download directory",
		Example: `  easycurl download https://go.dev/dl/go1.26.0.src.tar.gz --progress
  easycurl download --buffered --dir ./out https://example.com/logo.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buffered, _ := cmd.Flags().GetBool("buffered")
			progress, _ := cmd.Flags().GetBool("progress")
			checksum, _ := cmd.Flags().GetString("sha256")
			chunk, _ := cmd.Flags().GetInt("chunk-size")

			var dlOpts []download.Option
			if progress {
				dlOpts = append(dlOpts, download.WithProgress())
			}
			if checksum != "" {
				dlOpts = append(dlOpts, download.WithChecksum(sha256.New(), checksum))
			}
			if chunk > 0 {
				dlOpts = append(dlOpts, download.WithChunkSize(chunk))
			}

			c, err := a.newCurl(curl.WithDownloadOptions(dlOpts...))
			if err != nil {
				return err
			}

			strategy := curl.Chunked
			if buffered {
				strategy = curl.Buffered
			}

			fi, err := c.Download(cmd.Context(), args[0], strategy)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", fi.Path, fi.ContentType, fi.Size)
			return nil
		},
	}

	f := cmd.Flags()
	f.Bool("buffered", false, "Read the whole body into memory before writing")
	f.Bool("progress", false, "Log transfer progress")
	f.String("sha256", "", "Expected hex SHA-256 of the resource")
	f.Int("chunk-size", 0, "Copy buffer size in bytes for chunked downloads")

	return cmd
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "upload URL FIELD FILE",
		Short:   "Upload one file as multipart form data and print the response body",
		Example: `  easycurl upload https://httpbin.org/post document ./report.pdf`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := easycurl.UploadFile(cmd.Context(), args[0], args[1], args[2], a.clientOptions()...)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}
}
