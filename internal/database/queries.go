package database

const (
	queryInsertSnapshot = `
		INSERT INTO snapshots (id, taken_at, payload) VALUES (?, ?, ?)`

	queryGetLatestSnapshot = `
		SELECT payload, taken_at
		FROM snapshots
		ORDER BY taken_at DESC, created_at DESC
		LIMIT 1`

	queryPruneSnapshots = `
		DELETE FROM snapshots
		WHERE id NOT IN (
			SELECT id FROM snapshots
			ORDER BY taken_at DESC, created_at DESC
			LIMIT ?
		)`
)
