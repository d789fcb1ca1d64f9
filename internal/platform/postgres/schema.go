package postgres

// raffles and raffle_numbers rows are created by raffle setup outside this
// service; only their identity and status columns are used here.
const schema = `
CREATE TABLE IF NOT EXISTS raffles (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	total_numbers INTEGER NOT NULL CHECK (total_numbers > 0),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS raffle_sellers (
	raffle_id TEXT NOT NULL REFERENCES raffles(id),
	seller_id TEXT NOT NULL,
	active    BOOLEAN NOT NULL DEFAULT TRUE,
	cant_max  INTEGER NOT NULL CHECK (cant_max >= 0),
	PRIMARY KEY (raffle_id, seller_id)
);

CREATE TABLE IF NOT EXISTS participants (
	id         TEXT PRIMARY KEY,
	raffle_id  TEXT NOT NULL REFERENCES raffles(id),
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL,
	cedula     TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (raffle_id, phone)
);

CREATE TABLE IF NOT EXISTS raffle_numbers (
	raffle_id              TEXT NOT NULL REFERENCES raffles(id),
	number                 INTEGER NOT NULL,
	status                 TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available','reserved','sold')),
	seller_id              TEXT,
	participant_id         TEXT REFERENCES participants(id),
	buyer_name             TEXT NOT NULL DEFAULT '',
	buyer_phone            TEXT NOT NULL DEFAULT '',
	payment_method         TEXT,
	payment_proof_url      TEXT,
	payment_date           TIMESTAMPTZ,
	reservation_expires_at TIMESTAMPTZ,
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (raffle_id, number),
	CHECK (status <> 'sold' OR (participant_id IS NOT NULL AND payment_method IS NOT NULL AND payment_date IS NOT NULL)),
	CHECK (status <> 'reserved' OR (participant_id IS NOT NULL AND reservation_expires_at IS NOT NULL)),
	CHECK (status <> 'available' OR (participant_id IS NULL AND seller_id IS NULL))
);

CREATE INDEX IF NOT EXISTS raffle_numbers_reserved_idx
	ON raffle_numbers (reservation_expires_at) WHERE status = 'reserved';

CREATE TABLE IF NOT EXISTS fraud_reports (
	id             TEXT PRIMARY KEY,
	participant_id TEXT NOT NULL REFERENCES participants(id),
	raffle_id      TEXT NOT NULL REFERENCES raffles(id),
	seller_id      TEXT NOT NULL,
	message        TEXT NOT NULL DEFAULT '',
	state          TEXT NOT NULL DEFAULT 'pending',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (participant_id, raffle_id, seller_id)
);
`
