package store

// schemaSQL is the base DDL. Chunk identity, content, retrieval rules,
// refusal policy, and embedding status are separate tables keyed by the
// structured chunk ID, but writes always go through the aggregate upsert
// so a chunk is either fully present or absent.
const schemaSQL = `
-- Chunk identity and content. chunk_id is the structured string ID,
-- e.g. ca2013_act_s001 for a parent and ca2013_act_s001_c1 for a child.
CREATE TABLE IF NOT EXISTS chunks (
    chunk_id TEXT PRIMARY KEY,
    statute TEXT NOT NULL,
    doc_type TEXT NOT NULL,
    section TEXT NOT NULL,
    chunk_type TEXT NOT NULL CHECK (chunk_type IN ('parent', 'child')),
    parent_chunk_id TEXT REFERENCES chunks(chunk_id),
    position INTEGER DEFAULT 0,
    content TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    source_file TEXT,
    parse_method TEXT,
    lifecycle_status TEXT NOT NULL DEFAULT 'active'
        CHECK (lifecycle_status IN ('draft', 'active', 'retired')),
    version INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Governance attributes derived from the document type at ingestion time.
CREATE TABLE IF NOT EXISTS retrieval_rules (
    chunk_id TEXT PRIMARY KEY REFERENCES chunks(chunk_id) ON DELETE CASCADE,
    binding INTEGER NOT NULL,
    priority INTEGER NOT NULL,
    authority_level TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS refusal_policies (
    chunk_id TEXT PRIMARY KEY REFERENCES chunks(chunk_id) ON DELETE CASCADE,
    can_answer_standalone INTEGER NOT NULL,
    must_reference_parent_law INTEGER NOT NULL,
    refuse_if_parent_missing INTEGER NOT NULL
);

-- Tracks which child chunks have been written to the vector index.
CREATE TABLE IF NOT EXISTS embedding_status (
    chunk_id TEXT PRIMARY KEY REFERENCES chunks(chunk_id) ON DELETE CASCADE,
    embedded INTEGER NOT NULL DEFAULT 0,
    embedded_at DATETIME
);

-- Citation graph edges. The UNIQUE constraint makes edge writes idempotent.
CREATE TABLE IF NOT EXISTS relationships (
    id INTEGER PRIMARY KEY,
    source_chunk_id TEXT NOT NULL REFERENCES chunks(chunk_id) ON DELETE CASCADE,
    target_chunk_id TEXT NOT NULL REFERENCES chunks(chunk_id) ON DELETE CASCADE,
    relation_type TEXT NOT NULL,
    confidence REAL DEFAULT 1.0,
    description TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(source_chunk_id, target_chunk_id, relation_type)
);

-- Query audit log
CREATE TABLE IF NOT EXISTS query_log (
    id INTEGER PRIMARY KEY,
    query_id TEXT NOT NULL,
    query TEXT NOT NULL,
    answer TEXT,
    retrieval_method TEXT,
    sources JSON,
    refused INTEGER DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_chunks_section ON chunks(section);
CREATE INDEX IF NOT EXISTS idx_chunks_doc_type_section ON chunks(doc_type, section);
CREATE INDEX IF NOT EXISTS idx_chunks_parent ON chunks(parent_chunk_id);
CREATE INDEX IF NOT EXISTS idx_chunks_type ON chunks(chunk_type);
CREATE INDEX IF NOT EXISTS idx_chunks_lifecycle ON chunks(lifecycle_status);
CREATE INDEX IF NOT EXISTS idx_retrieval_rules_priority ON retrieval_rules(priority);
CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_chunk_id);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_chunk_id);
CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(relation_type);
CREATE INDEX IF NOT EXISTS idx_embedding_status_pending ON embedding_status(embedded);
`
