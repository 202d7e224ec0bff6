package db

const (
	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (id, balance, total_spent, tier, created_at, updated_at)
		VALUES (?, 0, 0, ?, ?, ?)`

	queryGetAccount = `
		SELECT id, balance, total_spent, tier, created_at, updated_at
		FROM accounts
		WHERE id = ?`

	queryLockAccount = `
		SELECT balance, total_spent
		FROM accounts
		WHERE id = ?`

	queryUpdateAccount = `
		UPDATE accounts
		SET balance = ?, total_spent = ?, tier = ?, updated_at = ?
		WHERE id = ?`

	queryListAccountIDs = `
		SELECT id FROM accounts ORDER BY id`

	// Ledger queries
	queryCheckExternalID = `
		SELECT id FROM ledger_transactions WHERE external_id = ? LIMIT 1`

	queryInsertTransaction = `
		INSERT INTO ledger_transactions (
			id, account_id, amount, kind, description, reference_id, external_id, balance_after, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryListTransactions = `
		SELECT id, account_id, amount, kind, description, reference_id, external_id, balance_after, created_at
		FROM ledger_transactions
		WHERE account_id = ?
		ORDER BY seq DESC
		LIMIT ? OFFSET ?`

	querySumTransactions = `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_transactions
		WHERE account_id = ?`

	// User queries
	queryInsertUser = `
		INSERT INTO users (id, username, email, password_hash, role, referral_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetUserByID = `
		SELECT id, username, email, password_hash, role, referral_code, created_at, updated_at
		FROM users
		WHERE id = ?`

	queryGetUserByEmail = `
		SELECT id, username, email, password_hash, role, referral_code, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER(?)`

	queryGetUserByReferralCode = `
		SELECT id, username, email, password_hash, role, referral_code, created_at, updated_at
		FROM users
		WHERE referral_code = ?`

	queryUserExists = `
		SELECT id FROM users WHERE LOWER(email) = LOWER(?) OR username = ? LIMIT 1`

	// Artifact queries
	queryInsertGeneration = `
		INSERT INTO ai_generations (id, user_id, campaign_id, kind, prompt, content, model, tokens_used, cost_credits, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryListGenerations = `
		SELECT id, user_id, campaign_id, kind, prompt, content, model, tokens_used, cost_credits, created_at
		FROM ai_generations
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	queryInsertCertificate = `
		INSERT INTO certificates (id, user_id, campaign_id, title, description, player_name, character_name, achievement, template, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryListCertificates = `
		SELECT id, user_id, campaign_id, title, description, player_name, character_name, achievement, template, created_at
		FROM certificates
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`
)
