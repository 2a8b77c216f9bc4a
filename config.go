package main

const ENV_ALCHEMYST_API_KEY = "alchemyst_api_key"
const ENV_ALCHEMYST_API_URL = "alchemyst_api_url"
const ENV_ALCHEMYST_TIMEOUT_SECONDS = "alchemyst_timeout_seconds"
const ENV_TWITTER_BEARER_TOKEN = "twitter_bearer_token"
const ENV_TWITTER_API_BASE_URL = "twitter_api_base_url"
const ENV_PROXY_DSN = "proxy_dsn"
const ENV_LISTEN_ADDR = "listen_addr"
const ENV_LOG_LEVEL = "log_level"
const ENV_ALLOWED_ORIGINS = "allowed_origins" // comma separated, "*" for any
const ENV_TELEGRAM_API_KEY = "telegram_api_key"
const ENV_TELEGRAM_ADMIN_CHAT_ID = "tg_admin_chat_id" // comma separated
const ENV_LOGGING_DATABASE_PATH = "logging_database_path"
const ENV_LOG_RETENTION_DAYS = "log_retention_days"

const DEFAULT_LISTEN_ADDR = ":5000"
const DEFAULT_ALCHEMYST_TIMEOUT_SECONDS = 30
const DEFAULT_LOG_RETENTION_DAYS = 30
const NOTIFICATION_QUEUE_SIZE = 30

// Routes
const ROUTE_PERSONALIZE = "/api/personalize"
const ROUTE_HEALTH = "/api/health"

// MAX_REQUEST_BODY bounds the JSON body of a personalize request.
const MAX_REQUEST_BODY = 64 << 10
