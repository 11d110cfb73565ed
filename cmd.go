package main

type Command struct {
	Version struct{} `cmd:"" help:"Print version information."`
	Extract struct {
		Backup         string   `help:"backup directory path" short:"b" env:"BACKUP_DIR"`
		Export         string   `help:"export directory path" short:"e" env:"EXPORT_DIR"`
		Output         string   `help:"file list CSV path" short:"o" env:"CSV_OUTPUT"`
		Extensions     []string `help:"media extensions to extract" placeholder:"EXT"`
		Limit          int      `help:"only process the first N files, 0 for all" short:"n"`
		DryRun         bool     `help:"don't write any files, just print the output"`
		Verbose        bool     `help:"log every file" short:"v"`
		NoMetadata     bool     `help:"don't read the photo library" xor:"metadata"`
		StrictMetadata bool     `help:"fail if the photo library can't be read" xor:"metadata"`
		ExifFallback   bool     `help:"read the capture time from the file when the photo library has none"`
		Verify         bool     `help:"hash every copy again after writing"`
	} `cmd:"" help:"Extract camera roll media from a device backup."`
	Stats struct {
		Backup     string   `help:"backup directory path" short:"b" env:"BACKUP_DIR"`
		Extensions []string `help:"media extensions to count" placeholder:"EXT"`
	} `cmd:"" help:"Print backup media statistics without exporting."`
	Daemon struct {
		Config string `help:"config file path" short:"c" required:""`
		DryRun bool   `help:"don't write any files, just print the output"`
	} `cmd:"" help:"Run scheduled extractions."`
}
