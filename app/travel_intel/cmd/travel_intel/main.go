package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/config"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/engine"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/logger"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/model"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/settings"
	"github.com/iWorld-y/travel_radar/app/travel_intel/pkg/storage"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:           "travel_intel",
		Short:         "Country travel safety intelligence",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "configs/config.yaml", "config file")
	root.AddCommand(runCMD(), categoriesCMD(), settingsCMD())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, engine.ErrInvalidCountry) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("无法加载配置文件: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	return cfg, nil
}

func runCMD() *cobra.Command {
	var (
		pretty   bool
		showAll  bool
		htmlPath string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run <country>",
		Short: "Gather, verify and summarize travel intel for a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			e, cleanup, err := engine.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			report, lines, err := e.RunIntel(ctx, args[0])
			if err != nil {
				if errors.Is(err, engine.ErrConfig) && showAll {
					printTrace(lines)
				}
				return err
			}

			// 如果配置了数据库信息，则保存历史
			if cfg.DB.Host != "" {
				store, err := storage.NewStorage(cfg.DB)
				if err != nil {
					logger.Log.Errorf("无法连接数据库: %v", err)
				} else {
					defer store.Close()
					saveHistory(ctx, store, report, lines)
				}
			}

			if htmlPath != "" {
				if err := writeHTML(htmlPath, report, lines); err != nil {
					return fmt.Errorf("生成 HTML 失败: %w", err)
				}
				logger.Log.Infof("报告已写入 %s", htmlPath)
			}

			if pretty {
				printReport(report)
				if showAll {
					printTrace(lines)
				}
				return nil
			}

			out := map[string]any{"report": report}
			if showAll {
				out["trace"] = lines
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "render the report for the terminal instead of JSON")
	cmd.Flags().BoolVar(&showAll, "trace", false, "include the execution trace")
	cmd.Flags().StringVar(&htmlPath, "html", "", "also write an HTML report to this path")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall deadline for the run")
	return cmd
}

type reportSaver interface {
	SaveReport(ctx context.Context, report *model.IntelReport, trace []string) error
}

// saveHistory 接近截止时间完成的运行也要保存
func saveHistory(ctx context.Context, store reportSaver, report *model.IntelReport, lines []string) {
	if err := store.SaveReport(context.WithoutCancel(ctx), report, lines); err != nil {
		logger.Log.Errorf("保存报告失败: %v", err)
	}
}

func categoriesCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "categories <country>",
		Short: "Show the categories and the search queries they would issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			e, cleanup, err := engine.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			printQueries(cmd.OutOrStdout(), e.Categories(), e.Queries(context.Background(), args[0]))
			return nil
		},
	}
}

func settingsCMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or write the settings store",
	}

	open := func() (*settings.SQLiteStore, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		if cfg.Settings.SQLitePath == "" {
			return nil, errors.New("settings.sqlite_path is not configured")
		}
		return settings.OpenSQLite(cfg.Settings.SQLitePath, cfg.OfficialSourceList())
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()
			v, err := store.GetSetting(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}, &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a setting, e.g. official_sources \"travel.state.gov,gov.uk\"",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.SetSetting(cmd.Context(), args[0], args[1])
		},
	})
	return cmd
}
