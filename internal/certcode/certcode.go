package certcode

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	defaultPrefix = "PBB-"
	defaultPad    = 5
)

// Config 礼品券编码配置
type Config struct {
	Prefix string // 券码前缀（如 PBB-）
	Pad    int    // 序列号补零宽度
}

// Default 返回默认编码配置
func Default() Config {
	return Config{Prefix: defaultPrefix, Pad: defaultPad}
}

func (c Config) normalized() Config {
	if strings.TrimSpace(c.Prefix) == "" {
		c.Prefix = defaultPrefix
	}
	c.Prefix = strings.ToUpper(strings.TrimSpace(c.Prefix))
	if c.Pad <= 0 {
		c.Pad = defaultPad
	}
	return c
}

// Normalize 规整用户输入的券码：转大写并去除所有空白字符
func (c Config) Normalize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ToSerial 将券码解析为原始序列号，解析失败返回 0
// 兼容 PBB-00055 与裸序列号 55 两种输入
func (c Config) ToSerial(code string) int64 {
	cfg := c.normalized()
	normalized := cfg.Normalize(code)
	normalized = strings.TrimPrefix(normalized, cfg.Prefix)

	var digits strings.Builder
	for _, r := range normalized {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	serial, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return serial
}

// ToCode 生成规范券码：大写前缀 + 补零序列号
func (c Config) ToCode(serial int64) string {
	cfg := c.normalized()
	return cfg.Prefix + cfg.padSerial(serial)
}

// Candidates 生成外部档案检索用的候选串集合：
// 裸序列号、补零序列号、规范券码、规整后的原始输入，去重去空
func (c Config) Candidates(serial int64, enteredCode string) []string {
	if serial <= 0 {
		return nil
	}
	cfg := c.normalized()
	raw := []string{
		strconv.FormatInt(serial, 10),
		cfg.padSerial(serial),
		cfg.ToCode(serial),
		cfg.Normalize(enteredCode),
	}
	seen := make(map[string]struct{}, len(raw))
	candidates := make([]string, 0, len(raw))
	for _, candidate := range raw {
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		candidates = append(candidates, candidate)
	}
	return candidates
}

func (c Config) padSerial(serial int64) string {
	s := strconv.FormatInt(serial, 10)
	if len(s) >= c.Pad {
		return s
	}
	return strings.Repeat("0", c.Pad-len(s)) + s
}
