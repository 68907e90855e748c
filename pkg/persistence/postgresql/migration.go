package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create generation records table
			CREATE TABLE generation_records (
				id UUID PRIMARY KEY,
				prompt TEXT NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (status IN ('success', 'error')),
				error_kind VARCHAR(50),
				error_message TEXT,
				provider VARCHAR(50),
				workflow_name VARCHAR(255) NOT NULL,
				workflow JSONB NOT NULL,
				export_path TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_generation_records_created_at ON generation_records(created_at DESC);
			CREATE INDEX idx_generation_records_status ON generation_records(status);
		`,
	}
}
