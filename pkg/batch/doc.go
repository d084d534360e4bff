/*
Package batch applies instruction scripts to collections of save-data records.

	+-----------+      +-------------+      +-----------+
	|   Store   | ---> |  Processor  | ---> |  Summary  |
	| (records) |      | (per record)|      |  (counts) |
	+-----------+      +-------------+      +-----------+

🎯 Purpose:
- Filter each record with the script's `=`/`!` lines
- Apply the `.` lines to every record that passes
- Count processed, modified and errored records

🔄 Flow:
 1. The Runner asks the Store for each candidate in order
 2. Candidates the Store does not recognise are screened out
 3. The Processor returns skipped, filtered, modified or errored
 4. Modified records are saved, then the Store commits once

💾 Stores:
  - MemoryStore: records already in memory; commit writes back everything
  - FolderStore: one record per file; only modified files are rewritten

⚡ Concurrency:
A Runner allows a single run at a time and returns ErrBusy otherwise. Start
runs the loop on one background worker and streams Progress over a channel.
Runs are not cancellable once started.

🔍 Example:

	s, err := script.Parse("=Species=25\n.Level=50")
	if err != nil {
		return err
	}
	store, err := batch.OpenFolder(ctx, "saves")
	if err != nil {
		return err
	}
	runner := batch.NewRunner(batch.NewProcessor(record.Default))
	sum, err := runner.Run(ctx, store, s, nil)
	if err != nil {
		return err
	}
	fmt.Println(sum.Message())
*/
package batch
